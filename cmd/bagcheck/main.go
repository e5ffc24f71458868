// Command bagcheck decodes serialized bags and reports what they contain.
//
//	bagcheck launch.json result.cbor
//	bagcheck -convert cbor -o launch.cbor launch.json
//
// Each file is decoded with whichever envelope schema claims it. The exit
// status is 1 when any file fails to decode.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
	"github.com/xiaot623/gogo/unitlink/protocol"
)

// report is printed once per input file.
type report struct {
	File     string                `json:"file"`
	Kind     protocol.EnvelopeKind `json:"kind,omitempty"`
	Envelope *protocol.Envelope    `json:"envelope,omitempty"`
	Error    string                `json:"error,omitempty"`
	Fields   []string              `json:"fields,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bagcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	convert := fs.String("convert", "", "re-encode the bag as json or cbor instead of inspecting it")
	out := fs.String("o", "", "output file for -convert (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "usage: bagcheck [-convert json|cbor [-o file]] file...")
		return 2
	}

	if *convert != "" {
		if len(files) != 1 {
			fmt.Fprintln(stderr, "-convert takes exactly one file")
			return 2
		}
		if err := convertFile(files[0], *convert, *out, stdout); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", files[0], err)
			return 1
		}
		return 0
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	status := 0
	for _, file := range files {
		r := inspect(file)
		if r.Error != "" {
			status = 1
		}
		if err := enc.Encode(r); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", file, err)
			status = 1
		}
	}
	return status
}

func load(file string) (*bag.Bag, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return bag.Unmarshal(data)
}

func inspect(file string) report {
	r := report{File: file}
	b, err := load(file)
	if err != nil {
		r.Error = err.Error()
		return r
	}

	env, err := protocol.Inspect(b)
	r.Kind = env.Kind
	if err != nil {
		r.Error = err.Error()
		var verr *envelope.ValidationError
		if errors.As(err, &verr) {
			r.Fields = verr.Keys()
		}
		return r
	}
	r.Envelope = &env
	return r
}

func convertFile(file, format, out string, stdout io.Writer) error {
	b, err := load(file)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(b, "", "  ")
	case "cbor":
		data, err = b.MarshalCBOR()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if out == "" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
