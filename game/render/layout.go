package render

// Rect is a region of the terminal in cells. X and Y are the top-left corner.
type Rect struct {
	X, Y int
	W, H int
}

// Empty reports whether r has no cells
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Inner returns r shrunk by one cell on every side, for content inside a
// border
func (r Rect) Inner() Rect {
	in := Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}
	if in.W < 0 {
		in.W = 0
	}
	if in.H < 0 {
		in.H = 0
	}
	return in
}

// SplitVertical cuts r into a top part holding pct percent of the rows and a
// bottom part holding the rest.
func SplitVertical(r Rect, pct int) (top, bottom Rect) {
	h := r.H * pct / 100
	top = Rect{X: r.X, Y: r.Y, W: r.W, H: h}
	bottom = Rect{X: r.X, Y: r.Y + h, W: r.W, H: r.H - h}
	return top, bottom
}

// SplitHorizontal cuts r into a left part holding pct percent of the columns
// and a right part holding the rest.
func SplitHorizontal(r Rect, pct int) (left, right Rect) {
	w := r.W * pct / 100
	left = Rect{X: r.X, Y: r.Y, W: w, H: r.H}
	right = Rect{X: r.X + w, Y: r.Y, W: r.W - w, H: r.H}
	return left, right
}

// Inset scales width and height of r independently to pct percent and keeps
// the result centered on r.
func Inset(r Rect, pct int) Rect {
	w := r.W * pct / 100
	h := r.H * pct / 100
	return Rect{
		X: r.X + (r.W-w)/2,
		Y: r.Y + (r.H-h)/2,
		W: w,
		H: h,
	}
}
