package input

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

// Blocks is the tokenized form of a resume/checkpoint file: block name ->
// (key -> whitespace-separated value fields).
type Blocks map[string]map[string][]string

// ParseResumeFile reads and tokenizes the resume file at path.
func ParseResumeFile(path string) (Blocks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, stmerr.Wrap(stmerr.ResumeCorrupt, err, "opening resume file %q", path)
	}
	defer f.Close()
	return ParseResume(f)
}

// ParseResume tokenizes the braced-block resume format: a
// block opens with a bare identifier line ending in "{" and closes with
// a lone "}"; every non-empty line in between is "<key> <value...>",
// whitespace-trimmed and quote-stripped.
func ParseResume(r io.Reader) (Blocks, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	blocks := Blocks{}
	var blockName string
	var cur map[string][]string
	inBlock := false
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if !inBlock {
			fields := strings.Fields(line)
			if len(fields) < 2 || fields[len(fields)-1] != "{" {
				return nil, stmerr.New(stmerr.ResumeCorrupt, "line %d: expected '<name> {' to open a block, got %q", lineNo, line)
			}
			blockName = strings.Join(fields[:len(fields)-1], " ")
			cur = map[string][]string{}
			inBlock = true
			continue
		}

		if line == "}" {
			blocks[blockName] = cur
			inBlock = false
			continue
		}

		fields := tokenizeLine(line)
		if len(fields) == 0 {
			continue
		}
		cur[fields[0]] = fields[1:]
	}
	if err := sc.Err(); err != nil {
		return nil, stmerr.Wrap(stmerr.ResumeCorrupt, err, "reading resume file")
	}
	if inBlock {
		return nil, stmerr.New(stmerr.ResumeCorrupt, "resume file: unterminated block %q", blockName)
	}
	return blocks, nil
}

func tokenizeLine(line string) []string {
	fields := strings.Fields(line)
	for i, f := range fields {
		fields[i] = strings.Trim(f, `"'`)
	}
	return fields
}
