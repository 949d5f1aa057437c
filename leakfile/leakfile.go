// SPDX-License-Identifier: GPL-2.0-or-later

// Package leakfile writes the diagnostics of a leaked map: the polyline
// editors load to show the leak and a JSON build report.
package leakfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"q3map/math/vec"
)

// WriteLin writes one point of trace per line.
func WriteLin(out io.Writer, trace []vec.Vec3) error {
	w := bufio.NewWriter(out)
	for _, p := range trace {
		if _, err := fmt.Fprintf(w, "%f %f %f\n", p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	return w.Flush()
}

func WriteLinFile(path string, trace []vec.Vec3) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating leak file")
	}
	err = WriteLin(f, trace)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing %s", path)
}

// Report summarizes one compile.
type Report struct {
	Build  uuid.UUID
	Map    string
	Status string
	// named counters like leafs or portals
	Counts map[string]int
	// leak polyline, empty unless the map leaked
	Trace []vec.Vec3
}

func (r *Report) proto() (*structpb.Struct, error) {
	counts := make(map[string]interface{}, len(r.Counts))
	for k, v := range r.Counts {
		counts[k] = v
	}
	trace := make([]interface{}, 0, len(r.Trace))
	for _, p := range r.Trace {
		trace = append(trace, []interface{}{p[0], p[1], p[2]})
	}
	return structpb.NewStruct(map[string]interface{}{
		"build":  r.Build.String(),
		"map":    r.Map,
		"status": r.Status,
		"counts": counts,
		"trace":  trace,
	})
}

// Marshal encodes r as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	s, err := r.proto()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode report")
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}

// Unmarshal decodes a report written by Marshal.
func Unmarshal(data []byte) (*Report, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "failed to decode report")
	}
	f := s.GetFields()
	id, err := uuid.Parse(f["build"].GetStringValue())
	if err != nil {
		return nil, errors.Wrap(err, "bad build id")
	}
	r := &Report{
		Build:  id,
		Map:    f["map"].GetStringValue(),
		Status: f["status"].GetStringValue(),
		Counts: make(map[string]int),
	}
	for k, v := range f["counts"].GetStructValue().GetFields() {
		r.Counts[k] = int(v.GetNumberValue())
	}
	for _, v := range f["trace"].GetListValue().GetValues() {
		c := v.GetListValue().GetValues()
		if len(c) != 3 {
			return nil, errors.Errorf("trace point with %d coordinates", len(c))
		}
		r.Trace = append(r.Trace, vec.Vec3{c[0].GetNumberValue(), c[1].GetNumberValue(), c[2].GetNumberValue()})
	}
	return r, nil
}

// CountNames returns the counter names, sorted.
func (r *Report) CountNames() []string {
	n := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (r *Report) WriteFile(path string) error {
	out, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	return nil
}

func ReadFile(path string) (*Report, error) {
	in, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read report")
	}
	return Unmarshal(in)
}
