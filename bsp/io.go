// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Marshal checks the limits and encodes f. Lumps are 4 byte aligned and
// follow the header in lump order.
func (f *File) Marshal() ([]byte, error) {
	if err := f.CheckLimits(); err != nil {
		return nil, err
	}
	ents := MarshalEntities(f.Entities)
	if err := CheckLimit("ENTSTRING", MaxEntString, len(ents)); err != nil {
		return nil, err
	}

	var h header
	copy(h.Ident[:], Ident)
	h.Version = Version

	var buf bytes.Buffer
	buf.Write(make([]byte, binary.Size(h)))
	lumps := [NumLumps]interface{}{
		LumpEntities:     ents,
		LumpShaders:      f.Shaders,
		LumpPlanes:       f.Planes,
		LumpNodes:        f.Nodes,
		LumpLeafs:        f.Leafs,
		LumpLeafSurfaces: f.LeafSurfaces,
		LumpLeafBrushes:  f.LeafBrushes,
		LumpModels:       f.Models,
		LumpBrushes:      f.Brushes,
		LumpBrushSides:   f.BrushSides,
		LumpDrawVerts:    f.DrawVerts,
		LumpDrawIndexes:  f.DrawIndexes,
		LumpFogs:         f.Fogs,
		LumpSurfaces:     f.Surfaces,
		LumpLightmaps:    f.Lightmaps,
		LumpLightGrid:    f.LightGrid,
		LumpVisibility:   f.Visibility,
	}
	for i, data := range lumps {
		off := buf.Len()
		if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
			return nil, errors.Wrapf(err, "writing %s lump", LumpName(i))
		}
		h.Lumps[i] = directory{Offset: int32(off), Size: int32(buf.Len() - off)}
		for buf.Len()%4 != 0 {
			buf.WriteByte(0)
		}
	}

	out := buf.Bytes()
	var hb bytes.Buffer
	if err := binary.Write(&hb, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}
	copy(out, hb.Bytes())
	return out, nil
}

func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "writing %s", path)
}

func readLump[T any](r io.ReaderAt, d directory) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if d.Offset < 0 || d.Size < 0 || int(d.Size)%size != 0 {
		return nil, errors.Errorf("funny lump size %d at %d", d.Size, d.Offset)
	}
	out := make([]T, int(d.Size)/size)
	sr := io.NewSectionReader(r, int64(d.Offset), int64(d.Size))
	if err := binary.Read(sr, binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Read decodes an IBSP version 46 file.
func Read(data []byte) (*File, error) {
	r := bytes.NewReader(data)
	var h header
	if err := binary.Read(io.NewSectionReader(r, 0, int64(binary.Size(h))), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	if string(h.Ident[:]) != Ident {
		return nil, errors.Errorf("wrong ident %q", h.Ident[:])
	}
	if h.Version != Version {
		return nil, errors.Errorf("wrong version %d, want %d", h.Version, Version)
	}

	f := &File{}
	var err error
	read := func(l int, fn func(directory) error) {
		if err != nil {
			return
		}
		if e := fn(h.Lumps[l]); e != nil {
			err = errors.Wrapf(e, "reading %s lump", LumpName(l))
		}
	}
	read(LumpEntities, func(d directory) error {
		ents, e := readLump[byte](r, d)
		f.Entities = ParseEntities(bytes.TrimRight(ents, "\x00"))
		return e
	})
	read(LumpShaders, func(d directory) (e error) { f.Shaders, e = readLump[Shader](r, d); return })
	read(LumpPlanes, func(d directory) (e error) { f.Planes, e = readLump[Plane](r, d); return })
	read(LumpNodes, func(d directory) (e error) { f.Nodes, e = readLump[Node](r, d); return })
	read(LumpLeafs, func(d directory) (e error) { f.Leafs, e = readLump[Leaf](r, d); return })
	read(LumpLeafSurfaces, func(d directory) (e error) { f.LeafSurfaces, e = readLump[int32](r, d); return })
	read(LumpLeafBrushes, func(d directory) (e error) { f.LeafBrushes, e = readLump[int32](r, d); return })
	read(LumpModels, func(d directory) (e error) { f.Models, e = readLump[Model](r, d); return })
	read(LumpBrushes, func(d directory) (e error) { f.Brushes, e = readLump[Brush](r, d); return })
	read(LumpBrushSides, func(d directory) (e error) { f.BrushSides, e = readLump[BrushSide](r, d); return })
	read(LumpDrawVerts, func(d directory) (e error) { f.DrawVerts, e = readLump[DrawVert](r, d); return })
	read(LumpDrawIndexes, func(d directory) (e error) { f.DrawIndexes, e = readLump[int32](r, d); return })
	read(LumpFogs, func(d directory) (e error) { f.Fogs, e = readLump[Fog](r, d); return })
	read(LumpSurfaces, func(d directory) (e error) { f.Surfaces, e = readLump[Surface](r, d); return })
	read(LumpLightmaps, func(d directory) (e error) { f.Lightmaps, e = readLump[byte](r, d); return })
	read(LumpLightGrid, func(d directory) (e error) { f.LightGrid, e = readLump[byte](r, d); return })
	read(LumpVisibility, func(d directory) (e error) { f.Visibility, e = readLump[byte](r, d); return })
	if err != nil {
		return nil, err
	}
	return f, nil
}

func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	f, err := Read(data)
	return f, errors.Wrapf(err, "parsing %s", path)
}
