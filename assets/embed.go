package assets

import (
	"bufio"
	"embed"
	"io"
	"io/fs"
	"strings"
)

//go:embed maps/*.txt
var mapsFS embed.FS

//go:embed sql/*.sql
var sqlFS embed.FS

// Migrations exposes the SQL migration scripts rooted at "sql".
func Migrations() fs.FS { return sqlFS }

// ReadRows splits a layout file into rows of tokens.
// Blank lines and lines starting with '#' are skipped.
func ReadRows(r io.Reader) ([][]string, error) {
	var out [][]string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.Fields(strings.ToLower(s)))
	}
	return out, sc.Err()
}

// MapLayout returns the embedded layout for a map id ("A".."D").
func MapLayout(id string) ([][]string, error) {
	f, err := mapsFS.Open("maps/" + id + ".txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}
