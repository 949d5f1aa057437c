// SPDX-License-Identifier: GPL-2.0-or-later

package shader

// Content flags as written to the bsp.
const (
	ContentsSolid         = 0x1
	ContentsLava          = 0x8
	ContentsSlime         = 0x10
	ContentsWater         = 0x20
	ContentsFog           = 0x40
	ContentsAreaPortal    = 0x8000
	ContentsPlayerClip    = 0x10000
	ContentsMonsterClip   = 0x20000
	ContentsTeleporter    = 0x40000
	ContentsJumpPad       = 0x80000
	ContentsClusterPortal = 0x100000
	ContentsDoNotEnter    = 0x200000
	ContentsOrigin        = 0x1000000
	ContentsDetail        = 0x8000000
	ContentsStructural    = 0x10000000
	ContentsTranslucent   = 0x20000000
	ContentsTrigger       = 0x40000000
	ContentsNoDrop        = 0x80000000
)

// Surface flags as written to the bsp.
const (
	SurfNoDamage   = 0x1
	SurfSlick      = 0x2
	SurfSky        = 0x4
	SurfLadder     = 0x8
	SurfNoImpact   = 0x10
	SurfNoMarks    = 0x20
	SurfFlesh      = 0x40
	SurfNoDraw     = 0x80
	SurfHint       = 0x100
	SurfSkip       = 0x200
	SurfNoLightmap = 0x400
	SurfMetalSteps = 0x1000
	SurfNoSteps    = 0x2000
	SurfNonSolid   = 0x4000
)

// CompileFlags steer the compiler and are never written out.
type CompileFlags uint32

const (
	CSolid CompileFlags = 1 << iota
	CTranslucent
	CStructural
	CHint
	CNoDraw
	CSky
	CSkip
	CAreaPortal
	CAntiPortal
	CDetail
	CFog
	CLiquid
	COrigin
	CVertexLit
	CNoMarks
)

func (c CompileFlags) Has(f CompileFlags) bool {
	return c&f != 0
}
