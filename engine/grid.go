package engine

const (
	// DefaultCTAs is the block count for large problems without a max-CTA hint
	DefaultCTAs = 256
	// SmallProblemLimit is the largest N an Unknown genre treats as small
	SmallProblemLimit = 1 << 16
)

// Grid is the block decomposition of one scan launch.
type Grid struct {
	Blocks int
	Chunk  int
}

// Plan decomposes n elements into contiguous blocks of Chunk elements.
// Small problems run as a single block; large ones spread over up to
// maxCTAs blocks (DefaultCTAs when maxCTAs <= 0).
func Plan(n, maxCTAs int, genre ProbSizeGenre) Grid {
	if n <= 0 {
		return Grid{}
	}
	if genre == Unknown {
		genre = Large
		if n <= SmallProblemLimit {
			genre = Small
		}
	}

	ctas := 1
	if genre == Large {
		ctas = maxCTAs
		if ctas <= 0 {
			ctas = DefaultCTAs
		}
	}
	if ctas > n {
		ctas = n
	}

	chunk := (n + ctas - 1) / ctas
	blocks := (n + chunk - 1) / chunk
	return Grid{Blocks: blocks, Chunk: chunk}
}

// Bounds returns the half-open element range of block b.
func (g Grid) Bounds(b, n int) (start, end int) {
	start = b * g.Chunk
	end = start + g.Chunk
	if end > n {
		end = n
	}
	return start, end
}
