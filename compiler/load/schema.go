package load

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syssam/splitwrap/schema"
)

// MarshalSet encodes a declaration set into the JSON document exchanged
// with resolver processes.
func MarshalSet(set *schema.Set) ([]byte, error) {
	if set == nil {
		set = &schema.Set{}
	}
	if set.Declarations == nil {
		set = &schema.Set{Declarations: []*schema.Declaration{}, Instances: set.Instances}
	}
	return json.Marshal(set)
}

// UnmarshalSet decodes the given buffer to a declaration set and checks that
// every declaration can be partitioned.
func UnmarshalSet(buf []byte) (*schema.Set, error) {
	set := &schema.Set{}
	if err := json.Unmarshal(buf, set); err != nil {
		return nil, fmt.Errorf("load: decode declarations: %w", err)
	}
	if err := validate(set); err != nil {
		return nil, err
	}
	return set, nil
}

// validate reports declarations that miss the name or the originating file.
func validate(set *schema.Set) error {
	var errs []error
	for i, d := range set.Declarations {
		switch {
		case d == nil:
			errs = append(errs, fmt.Errorf("load: declaration %d is null", i))
		case d.Name == "":
			errs = append(errs, fmt.Errorf("load: declaration %d in %q has no name", i, d.File))
		case d.File == "":
			errs = append(errs, fmt.Errorf("load: declaration %q has no file", d.Name))
		}
	}
	return errors.Join(errs...)
}
