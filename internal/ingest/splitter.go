package ingest

import "strings"

// defaultSeparators is the layered splitting order: paragraph boundaries
// first, then lines, then whitespace, then individual characters.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits document text into chunks of at most Size bytes, with
// adjacent chunks sharing at most Overlap bytes of boundary text. A piece
// that exceeds Size under one separator is re-split with the next finer
// separator; the final "" separator splits between characters, so every
// produced chunk fits.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter with the given chunk size and overlap.
// Overlap must be smaller than size (enforced by config validation).
func NewSplitter(size, overlap int) *Splitter {
	return &Splitter{size: size, overlap: overlap, separators: defaultSeparators}
}

// Split splits text into chunks. Empty and whitespace-only pieces are
// dropped.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the coarsest separator that occurs in the text; "" always matches.
	sep := separators[len(separators)-1]
	var finer []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			finer = separators[i+1:]
			break
		}
	}

	var chunks []string
	var fitting []string
	for _, piece := range splitText(text, sep) {
		if len(piece) < s.size {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			chunks = append(chunks, s.merge(fitting, sep)...)
			fitting = nil
		}
		if len(finer) == 0 {
			// No separator can split this piece further.
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, finer)...)
		}
	}
	if len(fitting) > 0 {
		chunks = append(chunks, s.merge(fitting, sep)...)
	}
	return chunks
}

// merge greedily packs pieces into chunks of at most size bytes, carrying
// over a trailing window of at most overlap bytes into the next chunk so
// context is not lost at chunk boundaries.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := len(sep)

	var chunks []string
	var current []string
	total := 0

	for _, piece := range pieces {
		pieceLen := len(piece)
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+pieceLen+extra > s.size && len(current) > 0 {
			if chunk := joinPieces(current, sep); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Drop leading pieces until the carried-over tail is within the
			// overlap budget and the new piece fits.
			for total > s.overlap || (total+pieceLen+carrySep(current, sepLen) > s.size && total > 0) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += pieceLen
		if len(current) > 1 {
			total += sepLen
		}
	}

	if chunk := joinPieces(current, sep); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func carrySep(current []string, sepLen int) int {
	if len(current) > 0 {
		return sepLen
	}
	return 0
}

func joinPieces(pieces []string, sep string) string {
	return strings.TrimSpace(strings.Join(pieces, sep))
}

// splitText splits on sep; an empty sep splits between characters.
func splitText(text, sep string) []string {
	var pieces []string
	if sep == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, sep)
	}
	// Drop empties produced by consecutive separators.
	out := pieces[:0]
	for _, p := range pieces {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
