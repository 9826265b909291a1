package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/zerr"
)

// Parse reads a script produced by Render back into the graph it was rendered
// from. It relies on the graph manifest and the length-framed module table and
// never evaluates the script.
func Parse(script string) (*domain.Graph, error) {
	p := &parser{src: script}

	entry, err := p.entry()
	if err != nil {
		return nil, err
	}

	manifest, err := p.manifest()
	if err != nil {
		return nil, err
	}

	g := domain.NewGraph(domain.NewModulePath(entry))
	for index := 0; ; index++ {
		path, code, err := p.module(index)
		if err != nil {
			return nil, err
		}

		if index >= len(manifest) || manifest[index].path != path {
			return nil, p.fail("module table does not match the graph manifest")
		}

		m := domain.NewModule(domain.NewModulePath(path))
		m.Code = code
		for _, dep := range manifest[index].dependencies {
			m.AddDependency(dep.specifier, domain.NewModulePath(dep.path))
		}
		if err := g.AddModule(m); err != nil {
			return nil, errors.Join(domain.ErrMalformedBundle, err)
		}

		done, err := p.next()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	if g.Len() != len(manifest) {
		return nil, p.fail("module table does not match the graph manifest")
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Join(domain.ErrMalformedBundle, err)
	}
	return g, nil
}

type manifestEntry struct {
	path         string
	dependencies []manifestDependency
}

type manifestDependency struct {
	specifier string
	path      string
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(reason string) error {
	return zerr.With(errors.Join(domain.ErrMalformedBundle, errors.New(reason)), "offset", p.pos)
}

// seek moves past the next occurrence of marker.
func (p *parser) seek(marker string) error {
	i := strings.Index(p.src[p.pos:], marker)
	if i < 0 {
		return p.fail(fmt.Sprintf("missing %q", strings.TrimSpace(marker)))
	}
	p.pos += i + len(marker)
	return nil
}

// expect consumes s at the current position.
func (p *parser) expect(s string) error {
	if !strings.HasPrefix(p.src[p.pos:], s) {
		return p.fail(fmt.Sprintf("expected %q", s))
	}
	p.pos += len(s)
	return nil
}

// decoder returns a JSON decoder reading from the current position.
func (p *parser) decoder() *json.Decoder {
	return json.NewDecoder(strings.NewReader(p.src[p.pos:]))
}

// str consumes one JSON string literal.
func (p *parser) str() (string, error) {
	dec := p.decoder()
	tok, err := dec.Token()
	if err != nil {
		return "", p.fail("invalid string literal")
	}
	s, ok := tok.(string)
	if !ok {
		return "", p.fail("expected string literal")
	}
	p.pos += int(dec.InputOffset())
	return s, nil
}

func (p *parser) entry() (string, error) {
	if err := p.seek(entryMarker); err != nil {
		return "", err
	}
	entry, err := p.str()
	if err != nil {
		return "", err
	}
	if err := p.expect(");"); err != nil {
		return "", err
	}
	return entry, nil
}

// manifest reads the graph manifest, keeping module and specifier order.
// The manifest is a JSON document embedded as a string literal.
func (p *parser) manifest() ([]manifestEntry, error) {
	if err := p.seek(graphMarker); err != nil {
		return nil, err
	}
	start := p.pos
	text, err := p.str()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(text))
	var entries []manifestEntry
	err = readObject(dec, func(path string) error {
		entry := manifestEntry{path: path}
		err := readObject(dec, func(key string) error {
			if key != "dependencies" {
				return fmt.Errorf("unexpected manifest field %q", key)
			}
			return readObject(dec, func(spec string) error {
				var resolved string
				if err := dec.Decode(&resolved); err != nil {
					return err
				}
				entry.dependencies = append(entry.dependencies, manifestDependency{specifier: spec, path: resolved})
				return nil
			})
		})
		entries = append(entries, entry)
		return err
	})
	if err == nil && strings.TrimSpace(text[dec.InputOffset():]) != "" {
		err = errors.New("trailing data after manifest")
	}
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrMalformedBundle, err), "offset", start)
	}

	if err := p.expect("),\n{\n"); err != nil {
		return nil, err
	}
	return entries, nil
}

// readObject consumes a JSON object, calling field for each key with the
// decoder positioned at the value.
func readObject(dec *json.Decoder, field func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		if err := field(key); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// module reads one framed entry of the module table.
func (p *parser) module(index int) (string, string, error) {
	if err := p.expect(moduleMarker); err != nil {
		return "", "", err
	}

	end := strings.Index(p.src[p.pos:], " */ ")
	if end < 0 {
		return "", "", p.fail("unterminated module marker")
	}
	fields := strings.Fields(p.src[p.pos : p.pos+end])
	if len(fields) != 2 {
		return "", "", p.fail("module marker needs an index and a length")
	}
	gotIndex, err := strconv.Atoi(fields[0])
	if err != nil || gotIndex != index {
		return "", "", p.fail(fmt.Sprintf("expected module index %d", index))
	}
	length, err := strconv.Atoi(fields[1])
	if err != nil || length < 0 {
		return "", "", p.fail("invalid module length")
	}
	p.pos += end + len(" */ ")

	path, err := p.str()
	if err != nil {
		return "", "", err
	}
	if err := p.expect(moduleHead); err != nil {
		return "", "", err
	}

	if p.pos+length > len(p.src) {
		return "", "", p.fail("module body exceeds the script")
	}
	code := p.src[p.pos : p.pos+length]
	p.pos += length

	if err := p.expect("\n}"); err != nil {
		return "", "", err
	}
	return path, code, nil
}

// next consumes the separator after a module and reports whether the table ended.
func (p *parser) next() (bool, error) {
	if strings.HasPrefix(p.src[p.pos:], ",\n") {
		p.pos += len(",\n")
		return false, nil
	}
	if err := p.expect("\n});"); err != nil {
		return false, err
	}
	return true, nil
}
