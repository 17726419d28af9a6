package phrase

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// bundleFile is the YAML layout of a phrase bundle:
//
//	folder: email
//	phrases:
//	  - name: sig
//	    content: |
//	      Regards,
//	      <cursor>
type bundleFile struct {
	Folder  string         `yaml:"folder"`
	Phrases []bundlePhrase `yaml:"phrases"`
}

type bundlePhrase struct {
	Name    string `yaml:"name"`
	Folder  string `yaml:"folder,omitempty"`
	Content string `yaml:"content"`
}

// LoadFile reads a YAML phrase bundle. Phrases without their own folder use
// the bundle's folder.
func LoadFile(path string) ([]*Phrase, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is given by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open phrase bundle: %w", err)
	}
	defer func() { _ = f.Close() }()

	phrases, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return phrases, nil
}

// Decode reads a YAML phrase bundle from r.
func Decode(r io.Reader) ([]*Phrase, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var bundle bundleFile
	if err := dec.Decode(&bundle); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid phrase bundle: %w", err)
	}

	seen := make(map[string]bool, len(bundle.Phrases))
	phrases := make([]*Phrase, 0, len(bundle.Phrases))
	for i, bp := range bundle.Phrases {
		p := &Phrase{
			Folder:  bp.Folder,
			Name:    bp.Name,
			Content: bp.Content,
		}
		if p.Folder == "" {
			p.Folder = bundle.Folder
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("phrase %d: %w", i+1, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("phrase %d: duplicate name %q", i+1, p.Name)
		}
		seen[p.Name] = true
		phrases = append(phrases, p)
	}
	return phrases, nil
}

// Encode writes phrases as a YAML bundle.
func Encode(w io.Writer, phrases []*Phrase) error {
	bundle := bundleFile{Phrases: make([]bundlePhrase, 0, len(phrases))}
	for _, p := range phrases {
		bundle.Phrases = append(bundle.Phrases, bundlePhrase{
			Name:    p.Name,
			Folder:  p.Folder,
			Content: p.Content,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(bundle); err != nil {
		return fmt.Errorf("failed to encode phrases: %w", err)
	}
	return enc.Close()
}
