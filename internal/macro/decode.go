package macro

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// decodeArgs checks required arguments and decodes args into out, a pointer
// to a struct whose fields carry `arg:"name"` tags. Fields already set on out
// act as defaults.
func decodeArgs(macro string, args Args, required []string, out any) error {
	for _, name := range required {
		if _, ok := args[name]; !ok {
			return &MissingArgumentError{Macro: macro, Arg: name}
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "arg",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]string(args)); err != nil {
		return fmt.Errorf("macro <%s>: invalid arguments: %w", macro, err)
	}
	return nil
}
