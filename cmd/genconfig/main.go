// Command genconfig writes config.default.toml from config.ExampleConfig,
// annotated with config.ConfigDocs.
//
// It runs through the go:generate directive in internal/config.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/vlccord/internal/config"
)

func main() {
	// go generate runs in internal/config; the root package embeds the file.
	outPath := flag.String("o", "../../config.default.toml", "output path")
	flag.Parse()

	result, err := render(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, []byte(result), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *outPath)
}

// render encodes cfg as TOML and interleaves the documentation from docs:
// a banner per section, comments above keys, alternatives below them.
func render(cfg *config.Config, docs map[string]config.FieldDoc) (string, error) {
	var raw bytes.Buffer
	if err := toml.NewEncoder(&raw).Encode(cfg); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}

	out := []string{
		"# ///////////////////////////////////////////////",
		"# vlccord Configuration",
		"# ///////////////////////////////////////////////",
		"",
	}
	var section []string
	emitted := map[string]bool{}

	for _, line := range strings.Split(raw.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue

		case strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "[["):
			injectOmitted(&out, docs, section, emitted)
			name := strings.Trim(trimmed, "[] ")
			section = strings.Split(name, ".")
			out = append(out, "", fmt.Sprintf("# ///// %s /////", sectionName(name)), "")
			out = appendComment(out, docs[name].Comment)
			out = append(out, trimmed)

		case !strings.Contains(trimmed, "=") || strings.HasPrefix(trimmed, "#"):
			out = append(out, trimmed)

		default:
			key := strings.TrimSpace(strings.SplitN(trimmed, "=", 2)[0])
			path := strings.Join(append(slices.Clone(section), key), ".")
			emitted[path] = true
			doc := docs[path]
			out = appendComment(out, doc.Comment)
			out = append(out, trimmed)
			for _, alt := range doc.Alternatives {
				out = append(out, "# "+alt)
			}
		}
	}
	injectOmitted(&out, docs, section, emitted)

	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n", nil
}

func appendComment(out []string, comment string) []string {
	if comment == "" {
		return out
	}
	for _, l := range strings.Split(comment, "\n") {
		out = append(out, "# "+l)
	}
	return out
}

// injectOmitted documents keys of the current section that the encoder
// skipped, as comments, sorted by path.
func injectOmitted(out *[]string, docs map[string]config.FieldDoc, section []string, emitted map[string]bool) {
	if len(section) == 0 {
		return
	}
	prefix := strings.Join(section, ".") + "."

	var omitted []string
	for path := range docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(rest, ".") || emitted[path] {
			continue
		}
		omitted = append(omitted, path)
	}
	slices.Sort(omitted)

	for _, path := range omitted {
		doc := docs[path]
		*out = append(*out, "")
		*out = appendComment(*out, doc.Comment)
		for _, alt := range doc.Alternatives {
			*out = append(*out, "# "+alt)
		}
		emitted[path] = true
	}
}

// sectionName capitalizes the last segment of a dotted section name.
func sectionName(section string) string {
	parts := strings.Split(section, ".")
	last := parts[len(parts)-1]
	if last == "" {
		return ""
	}
	return strings.ToUpper(last[:1]) + last[1:]
}
