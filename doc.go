// Package bencode implements reading and writing of bencoded object
// streams: the byte-string/integer/list/dict encoding used by the
// BitTorrent protocol for metainfo files and tracker messages.
//
// Use Decoder to scan a bencoded buffer token by token, or call
// Decoder.NextObject to walk it as a tree of List/Dict/Integer/Bytes
// values:
//
//	d := bencode.NewDecoder(buf)
//	obj, err := d.NextObject()
//
// Use Encoder to build a bencoded buffer through its typed façade:
//
//	e := bencode.NewEncoder()
//	e.EmitDict(func(d *bencode.DictEncoder) error {
//		d.EmitString("bar", []byte("25"))
//		return nil
//	})
//	out, err := e.Finish()
//
// Both sides are driven by the same StateTracker, so any byte slice
// Encoder.Finish returns is accepted by Decoder as long as the integer
// text passed to EmitInt is canonical (the encoder does not check it), and
// any grammar violation Decoder rejects is the same violation Encoder
// would refuse to produce.
//
// For typed (de)serialization of application values, implement
// FromBencode and ToBencode; see from_bencode.go and to_bencode.go.
package bencode
