package dtype

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// AliasPack maps canonical descriptors to extra string aliases.
//
//	aliases:
//	  int64: [bigint, long_integer]
//	  decimal(10,2): [money]
type AliasPack struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// LoadAliases reads an alias pack in YAML form.
func LoadAliases(r io.Reader) (AliasPack, error) {
	var pack AliasPack
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pack); err != nil {
		if err == io.EOF {
			return AliasPack{}, nil
		}
		return AliasPack{}, fmt.Errorf("decode alias pack: %w", err)
	}
	return pack, nil
}

// apply registers the pack's aliases. Keys are resolved against r, so a
// key may use any descriptor form already known.
func (p AliasPack) apply(r *Registry) error {
	keys := make([]string, 0, len(p.Aliases))
	for k := range p.Aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		t, err := r.Resolve(k)
		if err != nil {
			return fmt.Errorf("alias pack key %q: %w", k, err)
		}
		aliases := make([]any, len(p.Aliases[k]))
		for i, a := range p.Aliases[k] {
			aliases[i] = a
		}
		if err := r.Register(t, aliases...); err != nil {
			return fmt.Errorf("alias pack key %q: %w", k, err)
		}
	}
	return nil
}
