// Command chatclient is an interactive client for chatrelay. Each line read
// from stdin is sent as one frame; every frame received is printed.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/momentics/hioload-relay/protocol"
	"go.uber.org/zap"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:1024", "Relay address")
	name := flag.String("name", "", "Prefix for outgoing messages")
	flag.Parse()

	logger := zap.Must(zap.NewDevelopment())
	defer logger.Sync()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		logger.Fatal("Failed to connect", zap.String("addr", *addr), zap.Error(err))
	}
	defer conn.Close()
	logger.Info("Connected", zap.String("addr", *addr))

	go receive(conn, logger)

	prefix := ""
	if *name != "" {
		prefix = *name + ": "
	}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := protocol.WriteFrame(conn, []byte(prefix+scanner.Text())); err != nil {
			logger.Error("Failed to send", zap.Error(err))
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Failed to read stdin", zap.Error(err))
	}
}

func receive(conn net.Conn, logger *zap.Logger) {
	r := bufio.NewReader(conn)
	for {
		payload, err := protocol.ReadFrame(r, protocol.DefaultMaxPayload)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				logger.Info("Relay closed the connection")
			} else {
				logger.Error("Failed to read frame", zap.Error(err))
			}
			os.Exit(0)
		}
		fmt.Println(string(payload))
	}
}
