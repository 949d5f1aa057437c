// SPDX-License-Identifier: GPL-2.0-or-later

package surface

import (
	"github.com/chewxy/math32"

	"q3map/brush"
	"q3map/math/vec"
)

// for each of floor, ceiling, west, east, south and north: the axis facing
// it and the s and t directions projected onto it
var baseAxis = [18]vec.Vec3{
	{0, 0, 1}, {1, 0, 0}, {0, -1, 0},
	{0, 0, -1}, {1, 0, 0}, {0, -1, 0},
	{1, 0, 0}, {0, 1, 0}, {0, 0, -1},
	{-1, 0, 0}, {0, 1, 0}, {0, 0, -1},
	{0, 1, 0}, {1, 0, 0}, {0, 0, -1},
	{0, -1, 0}, {1, 0, 0}, {0, 0, -1},
}

// textureAxis returns the s and t axes of the base plane closest to normal.
func textureAxis(normal vec.Vec3) (vec.Vec3, vec.Vec3) {
	best, bestAxis := 0.0, 0
	for i := 0; i < 6; i++ {
		if d := vec.Dot(normal, baseAxis[i*3]); d > best+0.0001 {
			best, bestAxis = d, i
		}
	}
	return baseAxis[bestAxis*3+1], baseAxis[bestAxis*3+2]
}

func rotation(deg float64) (sin, cos float64) {
	switch deg {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	s, c := math32.Sincos(float32(deg) * math32.Pi / 180)
	return float64(s), float64(c)
}

// TextureVecs turns a shift/rotate/scale definition into the two mapping
// vectors. Element 3 is the offset.
func TextureVecs(normal vec.Vec3, td brush.TexDef) [2][4]float64 {
	var axes [2]vec.Vec3
	axes[0], axes[1] = textureAxis(normal)
	scale := td.Scale
	for i := range scale {
		if scale[i] == 0 {
			scale[i] = 1
		}
	}
	sin, cos := rotation(td.Rotate)

	major := func(v vec.Vec3) int {
		switch {
		case v[0] != 0:
			return 0
		case v[1] != 0:
			return 1
		}
		return 2
	}
	sv, tv := major(axes[0]), major(axes[1])
	for i := range axes {
		ns := cos*axes[i][sv] - sin*axes[i][tv]
		nt := sin*axes[i][sv] + cos*axes[i][tv]
		axes[i][sv] = ns
		axes[i][tv] = nt
	}

	var vecs [2][4]float64
	for i := range vecs {
		for j := 0; j < 3; j++ {
			vecs[i][j] = axes[i][j] / scale[i]
		}
		vecs[i][3] = td.Shift[i]
	}
	return vecs
}

// ST maps a point to texture coordinates for an image of the given size.
func ST(vecs [2][4]float64, p vec.Vec3, width, height int) [2]float32 {
	s := vec.Dot(p, vec.Vec3{vecs[0][0], vecs[0][1], vecs[0][2]}) + vecs[0][3]
	t := vec.Dot(p, vec.Vec3{vecs[1][0], vecs[1][1], vecs[1][2]}) + vecs[1][3]
	return [2]float32{float32(s / float64(width)), float32(t / float64(height))}
}
