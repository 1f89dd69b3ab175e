package bencode

import "golang.org/x/sync/errgroup"

// DecodeAllConcurrent decodes each of inputs as one independent
// top-level object, fanning the work across goroutines. Each
// individual decode is still single-threaded and synchronous (spec.md
// §5 is unchanged) — only the fan-out across inputs is concurrent.
//
// The returned slices are positional: objects[i]/errs[i] correspond to
// inputs[i]. A failed decode leaves objects[i] nil and errs[i] set;
// it does not cancel the other goroutines.
func DecodeAllConcurrent(inputs [][]byte, cfg *DecoderConfig) ([]*Object, []error) {
	objects := make([]*Object, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			// Walk the whole first value once, so a grammar or depth
			// error anywhere inside it is reported in errs[i] rather
			// than only when the caller later walks the returned view.
			if len(input) > 0 {
				check := NewDecoderWithConfig(input, cfg)
				for {
					if _, err := check.NextToken(); err != nil {
						errs[i] = err
						return nil
					}
					if len(check.tracker.stack) == 0 {
						break
					}
				}
			}
			dec := NewDecoderWithConfig(input, cfg)
			obj, err := dec.NextObject()
			objects[i] = obj
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait() // individual errors are reported per-index, never joined

	return objects, errs
}
