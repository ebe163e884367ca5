package pcd

import "fmt"

// Cloud is an ordered point sequence together with the header it was
// decoded from (or the header derived for it on encode).
type Cloud[P Point[P]] struct {
	Header Header
	Points []P
}

func (c *Cloud[P]) Len() int {
	return len(c.Points)
}

// IsOrganized reports whether the cloud is a grid addressable by
// (column, row).
func (c *Cloud[P]) IsOrganized() bool {
	return c.Header.Height > 1
}

// At returns the point at (col, row) of an organized cloud.
func (c *Cloud[P]) At(col, row int) (P, error) {
	var zero P
	if !c.IsOrganized() {
		return zero, fmt.Errorf("%w: cloud is not organized", ErrIndexOutOfRange)
	}
	if col < 0 || col >= c.Header.Width || row < 0 || row >= c.Header.Height {
		return zero, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrIndexOutOfRange, col, row, c.Header.Width, c.Header.Height)
	}
	i := row*c.Header.Width + col
	if i >= len(c.Points) {
		return zero, fmt.Errorf("%w: index %d of %d points", ErrIndexOutOfRange, i, len(c.Points))
	}
	return c.Points[i], nil
}

// Clear drops all points and zeroes the header dimensions.
func (c *Cloud[P]) Clear() {
	c.Points = nil
	c.Header.Width = 0
	c.Header.Height = 0
	c.Header.Points = 0
}
