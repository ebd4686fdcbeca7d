// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Wire framing for the broadcast relay:
//
//	byte 0     : 0xFF marker
//	bytes 1..4 : int32 little-endian payload length L (L >= 0)
//	bytes 5..  : L bytes of opaque payload
//
// Decoding is incremental: bytes accumulate in a Buffer and Decoder.Extract
// pulls out every complete frame, discarding noise before a marker and
// malformed headers instead of failing.
package protocol
