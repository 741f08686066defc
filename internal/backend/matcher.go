package backend

import (
	"image"
	"sort"

	xdraw "golang.org/x/image/draw"
)

// Match is one template hit in screen coordinates.
type Match struct {
	Rect  image.Rectangle
	Score float64
}

// Matcher locates a template image inside a frame by grayscale sum of
// absolute differences. Score is 1 for a pixel-perfect hit and falls toward 0.
// Large searches run on a downscaled pyramid level first and refine the best
// candidates at full resolution.
type Matcher struct {
	Threshold float64
	// MaxCandidates bounds how many coarse hits Find refines. FindAll
	// refines every coarse hit.
	MaxCandidates int
}

// NewMatcher returns a Matcher accepting scores at or above threshold.
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold, MaxCandidates: 16}
}

// coarseSlack is how far below the threshold a coarse hit may score and
// still be refined.
const coarseSlack = 0.15

type grayImage struct {
	w, h int
	pix  []uint8
}

func toGray(img image.Image, r image.Rectangle) grayImage {
	g := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Copy(g, image.Point{}, img, r, xdraw.Src, nil)
	return grayImage{w: r.Dx(), h: r.Dy(), pix: g.Pix}
}

func (g grayImage) scaled(factor int) grayImage {
	src := &image.Gray{Pix: g.pix, Stride: g.w, Rect: image.Rect(0, 0, g.w, g.h)}
	dst := image.NewGray(image.Rect(0, 0, max(1, g.w/factor), max(1, g.h/factor)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return grayImage{w: dst.Rect.Dx(), h: dst.Rect.Dy(), pix: dst.Pix}
}

// sad returns the sum of absolute differences of tmpl placed at (x, y),
// stopping early once limit is exceeded.
func sad(frame, tmpl grayImage, x, y int, limit int) int {
	total := 0
	for ty := 0; ty < tmpl.h; ty++ {
		frow := frame.pix[(y+ty)*frame.w+x:]
		trow := tmpl.pix[ty*tmpl.w:]
		for tx := 0; tx < tmpl.w; tx++ {
			d := int(frow[tx]) - int(trow[tx])
			if d < 0 {
				d = -d
			}
			total += d
		}
		if total > limit {
			return total
		}
	}
	return total
}

// scan scores every placement with its top-left corner inside area and
// returns those scoring at least minScore.
func scan(frame, tmpl grayImage, area image.Rectangle, minScore float64) []Match {
	maxSAD := 255 * tmpl.w * tmpl.h
	limit := int((1 - minScore) * float64(maxSAD))
	area = area.Intersect(image.Rect(0, 0, frame.w-tmpl.w+1, frame.h-tmpl.h+1))

	var hits []Match
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			s := sad(frame, tmpl, x, y, limit)
			if s <= limit {
				hits = append(hits, Match{
					Rect:  image.Rect(x, y, x+tmpl.w, y+tmpl.h),
					Score: 1 - float64(s)/float64(maxSAD),
				})
			}
		}
	}
	return hits
}

// suppress keeps the best-scoring non-overlapping hits. Equal scores are
// ordered top to bottom, then left to right.
func suppress(hits []Match, limit int) []Match {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Rect.Min.Y != b.Rect.Min.Y {
			return a.Rect.Min.Y < b.Rect.Min.Y
		}
		return a.Rect.Min.X < b.Rect.Min.X
	})
	var kept []Match
	for _, h := range hits {
		overlaps := false
		for _, k := range kept {
			if h.Rect.Overlaps(k.Rect) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, h)
			if limit > 0 && len(kept) == limit {
				break
			}
		}
	}
	return kept
}

func pyramidFactor(frame, tmpl grayImage) int {
	if frame.w*frame.h < 160_000 {
		return 1
	}
	f := min(tmpl.w, tmpl.h) / 8
	return max(1, min(f, 4))
}

// FindAll returns every non-overlapping hit of tmpl inside within, best first.
func (m *Matcher) FindAll(frame, tmpl image.Image, within image.Rectangle) []Match {
	return m.search(frame, tmpl, within, 0)
}

// search matches tmpl inside within, refining at most candidates coarse
// hits when the frame is large enough for the pyramid. Zero means no limit.
func (m *Matcher) search(frame, tmpl image.Image, within image.Rectangle, candidates int) []Match {
	within = within.Intersect(frame.Bounds())
	tb := tmpl.Bounds()
	if within.Empty() || tb.Dx() > within.Dx() || tb.Dy() > within.Dy() || tb.Empty() {
		return nil
	}
	g := toGray(frame, within)
	t := toGray(tmpl, tb)

	var hits []Match
	if f := pyramidFactor(g, t); f > 1 {
		gs, ts := g.scaled(f), t.scaled(f)
		coarse := scan(gs, ts, image.Rect(0, 0, gs.w, gs.h), m.Threshold-coarseSlack)
		for _, c := range suppress(coarse, candidates) {
			area := image.Rect(c.Rect.Min.X*f-f, c.Rect.Min.Y*f-f, c.Rect.Min.X*f+f+1, c.Rect.Min.Y*f+f+1)
			hits = append(hits, scan(g, t, area, m.Threshold)...)
		}
	} else {
		hits = scan(g, t, image.Rect(0, 0, g.w, g.h), m.Threshold)
	}

	found := suppress(hits, 0)
	for i := range found {
		found[i].Rect = found[i].Rect.Add(within.Min)
	}
	return found
}

// Find returns the best hit of tmpl inside within.
func (m *Matcher) Find(frame, tmpl image.Image, within image.Rectangle) (Match, bool) {
	hits := m.search(frame, tmpl, within, m.MaxCandidates)
	if len(hits) == 0 {
		return Match{}, false
	}
	return hits[0], true
}
