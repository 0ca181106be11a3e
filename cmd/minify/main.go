// Command minify writes minified copies of the templates and static assets
// into dist/, which the server prefers in production.
//
//	go run ./cmd/minify            # templates/ and static/ -> dist/
//	go run ./cmd/minify -out build # custom output directory
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// mediaTypes maps handled extensions to minifier media types. Other files are
// copied unchanged.
var mediaTypes = map[string]string{
	".css":  "text/css",
	".html": "text/html",
	".js":   "application/javascript",
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	// Go template actions must survive untouched.
	m.Add("text/html", &html.Minifier{
		TemplateDelims:   html.GoTemplateDelims,
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}

type stats struct {
	files    int
	original int
	minified int
}

func main() {
	out := flag.String("out", "dist", "Output directory")
	flag.Parse()

	m := newMinifier()
	var total stats
	for _, dir := range []string{"templates", "static"} {
		s, err := minifyTree(m, dir, filepath.Join(*out, dir))
		if err != nil {
			log.Fatalf("Error minifying %s: %v", dir, err)
		}
		total.files += s.files
		total.original += s.original
		total.minified += s.minified
	}

	fmt.Printf("Minified %d files: %d bytes -> %d bytes (%.1f%% reduction)\n",
		total.files, total.original, total.minified, reduction(total.original, total.minified))
}

// minifyTree mirrors srcDir into dstDir, minifying the files it knows.
func minifyTree(m *minify.M, srcDir, dstDir string) (stats, error) {
	var s stats
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0755)
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		data := src
		if mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]; ok {
			if data, err = m.Bytes(mediaType, src); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			s.files++
			s.original += len(src)
			s.minified += len(data)
		}
		return os.WriteFile(dst, data, 0644)
	})
	return s, err
}

func reduction(original, minified int) float64 {
	if original == 0 {
		return 0
	}
	return float64(original-minified) / float64(original) * 100
}
