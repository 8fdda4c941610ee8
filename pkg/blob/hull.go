package blob

import (
	"image"
	"sort"
)

// hullArea returns the area of the convex hull of the pixel squares
func hullArea(pixels []image.Point) float64 {
	if len(pixels) == 0 {
		return 0
	}

	// only the first and last pixel of each row can reach the hull
	type span struct{ lo, hi int }
	rows := make(map[int]span)
	for _, p := range pixels {
		s, ok := rows[p.Y]
		if !ok {
			rows[p.Y] = span{p.X, p.X}
			continue
		}
		if p.X < s.lo {
			s.lo = p.X
		}
		if p.X > s.hi {
			s.hi = p.X
		}
		rows[p.Y] = s
	}

	pts := make([]image.Point, 0, 4*len(rows))
	for y, s := range rows {
		pts = append(pts,
			image.Pt(s.lo, y), image.Pt(s.lo, y+1),
			image.Pt(s.hi+1, y), image.Pt(s.hi+1, y+1))
	}

	hull := convexHull(pts)
	var twice int
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		twice += a.X*b.Y - b.X*a.Y
	}
	if twice < 0 {
		twice = -twice
	}
	return float64(twice) / 2
}

// convexHull returns the hull vertices in counter-clockwise order (monotone chain)
func convexHull(pts []image.Point) []image.Point {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	if len(pts) < 3 {
		return pts
	}

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]image.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}
