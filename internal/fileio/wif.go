package fileio

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/logging"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

// WIFHeader is the metadata written to the [WIF] section.
type WIFHeader struct {
	Date          string
	Developers    string
	SourceProgram string
	SourceVersion string
}

// DefaultWIFHeader returns a header dated now.
func DefaultWIFHeader(now time.Time) WIFHeader {
	return WIFHeader{
		Date:          now.Format("January 2, 2006"),
		Developers:    "weaver",
		SourceProgram: "weaver",
		SourceVersion: "1.0",
	}
}

// wifDoc holds parsed sections keyed by upper-case section name and
// lower-case key.
type wifDoc map[string]map[string]string

type wifEntry struct {
	index  int
	values []int
}

func parseWIF(data []byte) wifDoc {
	doc := make(wifDoc)
	var section map[string]string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.ToUpper(strings.TrimSpace(line[1 : len(line)-1]))
			section = make(map[string]string)
			doc[name] = section
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || section == nil {
			continue
		}
		section[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return doc
}

// enabled reports whether a section is present and not switched off in
// [CONTENTS].
func (w wifDoc) enabled(name string) bool {
	if _, ok := w[name]; !ok {
		return false
	}
	switch strings.ToLower(w["CONTENTS"][strings.ToLower(name)]) {
	case "no", "false", "off", "0":
		return false
	}
	return true
}

func (w wifDoc) str(section, key string) string {
	return w[section][key]
}

func (w wifDoc) num(section, key string, def int) int {
	v, err := strconv.Atoi(w.str(section, key))
	if err != nil {
		return def
	}
	return v
}

// entries returns the numbered lines of a section in index order.
func (w wifDoc) entries(section string) []wifEntry {
	var out []wifEntry
	for key, value := range w[section] {
		index, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out = append(out, wifEntry{index: index, values: parseInts(value)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].index < out[b].index })
	return out
}

func parseInts(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// LoadWIF decodes a WIF document into one frame-loom draft named name.
// Missing sections leave their part of the model at its default. WIF
// numbers warp ends from the right, so end 1 is the last column.
func LoadWIF(data []byte, name string) (*Envelope, error) {
	w := parseWIF(data)
	log := logging.Component("fileio")

	warps := max(w.num("WARP", "threads", 0), 0)
	wefts := max(w.num("WEFT", "threads", 0), 0)

	d := draft.New(wefts, warps)
	d.Clear(models.Down)
	d.OverloadName(name)

	l := loom.New(d, w.num("WEAVING", "shafts", defaultLoadFrames), w.num("WEAVING", "treadles", defaultLoadTreadles))
	l.OverloadType(loom.TypeFrame)

	if w.enabled("TREADLING") {
		treadling := filledInts(wefts, -1)
		for _, e := range w.entries("TREADLING") {
			if i := e.index - 1; i >= 0 && i < wefts && len(e.values) > 0 {
				treadling[i] = e.values[0] - 1
			}
		}
		l.OverloadTreadling(treadling)
	}

	if w.enabled("THREADING") {
		threading := filledInts(warps, -1)
		for _, e := range w.entries("THREADING") {
			if j := warps - e.index; j >= 0 && j < warps && len(e.values) > 0 {
				threading[j] = e.values[0] - 1
			}
		}
		l.OverloadThreading(threading)
	}

	if w.enabled("TIEUP") {
		var tieup [][]bool
		for _, e := range w.entries("TIEUP") {
			t := e.index - 1
			if t < 0 {
				continue
			}
			for _, shaft := range e.values {
				f := shaft - 1
				if f < 0 {
					continue
				}
				for len(tieup) <= f {
					tieup = append(tieup, nil)
				}
				for len(tieup[f]) <= t {
					tieup[f] = append(tieup[f], false)
				}
				tieup[f][t] = true
			}
		}
		l.OverloadTieup(tieup)
	}

	if w.enabled("COLOR TABLE") && strings.EqualFold(w.str("COLOR PALETTE", "form"), "RGB") {
		d.OverloadShuttles(w.colorTable())
		d.OverloadRowShuttleMapping(w.colorMapping("WEFT COLORS", "WEFT", wefts, false))
		d.OverloadColShuttleMapping(w.colorMapping("WARP COLORS", "WARP", warps, true))
	}

	if !l.RecalculateDraft() {
		log.Warn().Str("name", name).Msg("wif program does not match draft size")
	}

	log.Debug().Str("name", name).Int("warps", warps).Int("wefts", wefts).Msg("loaded wif")
	return &Envelope{
		Type:     "weaver",
		Drafts:   []*draft.Draft{d},
		Looms:    []*loom.Loom{l},
		Patterns: []models.Pattern{},
		Ops:      []OpProxy{},
	}, nil
}

// colorTable reads [COLOR TABLE], rescaling channels from the palette range
// to 0..255.
func (w wifDoc) colorTable() []models.Shuttle {
	lo, hi := 0, 255
	if r := parseInts(w.str("COLOR PALETTE", "range")); len(r) == 2 && r[1] > r[0] {
		lo, hi = r[0], r[1]
	}
	scale := func(v int) uint8 {
		v = min(max(v, lo), hi)
		return uint8((v - lo) * 255 / (hi - lo))
	}

	entries := w.entries("COLOR TABLE")
	n := 0
	for _, e := range entries {
		n = max(n, e.index)
	}
	shuttles := make([]models.Shuttle, n)
	for i := range shuttles {
		shuttles[i] = models.DefaultShuttle()
		shuttles[i].ID = i
		shuttles[i].Name = fmt.Sprintf("Color %d", i+1)
	}
	for _, e := range entries {
		if e.index < 1 || len(e.values) < 3 {
			continue
		}
		shuttles[e.index-1].Color = models.ShuttleColorFromRGB(scale(e.values[0]), scale(e.values[1]), scale(e.values[2]))
	}
	return shuttles
}

// colorMapping reads a WARP/WEFT COLORS section. The thread section's
// Color key supplies the default.
func (w wifDoc) colorMapping(section, threads string, n int, reversed bool) []int {
	mapping := filledInts(n, w.num(threads, "color", 1)-1)
	if !w.enabled(section) {
		return mapping
	}
	for _, e := range w.entries(section) {
		k := e.index - 1
		if reversed {
			k = n - e.index
		}
		if k >= 0 && k < n && len(e.values) > 0 {
			mapping[k] = e.values[0] - 1
		}
	}
	return mapping
}

// SaveWIF encodes a draft and its loom as WIF. Jacquard or missing looms
// are replaced by a frame program derived from the drawdown.
func SaveWIF(d *draft.Draft, l *loom.Loom, h WIFHeader) ([]byte, error) {
	if d == nil {
		return nil, ErrNoDraft
	}
	if l == nil || !l.IsFrame() {
		derived := loom.New(nil, defaultLoadFrames, defaultLoadTreadles)
		derived.RecomputeLoom(d)
		l = derived
	}

	var b strings.Builder
	b.WriteString("[WIF]\nVersion=1.1\n")
	fmt.Fprintf(&b, "Date=%s\nDevelopers=%s\nSource Program=%s\nSource Version=%s\n", h.Date, h.Developers, h.SourceProgram, h.SourceVersion)
	b.WriteString("[CONTENTS]\n")
	b.WriteString("COLOR PALETTE=yes\nWEAVING=yes\nWARP=yes\nWEFT=yes\nTIEUP=yes\nCOLOR TABLE=yes\nTHREADING=yes\nWARP COLORS=yes\nTREADLING=yes\nWEFT COLORS=yes\n")

	b.WriteString("[COLOR PALETTE]\n")
	fmt.Fprintf(&b, "Entries=%d\nForm=RGB\nRange=0,255\n", len(d.Shuttles))

	b.WriteString("[WEAVING]\n")
	fmt.Fprintf(&b, "Shafts=%d\nTreadles=%d\nRising Shed=yes\n", l.MinFrames, l.MinTreadles)

	fmt.Fprintf(&b, "[WARP]\nThreads=%d\nColors=%d\n", d.Warps, distinct(d.ColShuttleMapping))
	fmt.Fprintf(&b, "[WEFT]\nThreads=%d\nColors=%d\n", d.Wefts, distinct(d.RowShuttleMapping))

	b.WriteString("[TIEUP]\n")
	for _, t := range usedTreadles(l.Tieup) {
		frames := make([]string, 0)
		for f := range l.Tieup {
			if t < len(l.Tieup[f]) && l.Tieup[f][t] {
				frames = append(frames, strconv.Itoa(f+1))
			}
		}
		fmt.Fprintf(&b, "%d=%s\n", t+1, strings.Join(frames, ","))
	}

	b.WriteString("[COLOR TABLE]\n")
	for i, s := range d.Shuttles {
		r, g, bl, err := s.RGB()
		if err != nil {
			r, g, bl = 0, 0, 0
		}
		fmt.Fprintf(&b, "%d=%d,%d,%d\n", i+1, r, g, bl)
	}

	b.WriteString("[THREADING]\n")
	for i, f := range l.Threading {
		if f >= 0 {
			fmt.Fprintf(&b, "%d=%d\n", len(l.Threading)-i, f+1)
		}
	}

	b.WriteString("[WARP COLORS]\n")
	n := len(d.ColShuttleMapping)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d=%d\n", i+1, d.ColShuttleMapping[n-1-i]+1)
	}

	b.WriteString("[TREADLING]\n")
	for i, t := range l.Treadling {
		if t >= 0 {
			fmt.Fprintf(&b, "%d=%d\n", i+1, t+1)
		}
	}

	b.WriteString("[WEFT COLORS]\n")
	for i, s := range d.RowShuttleMapping {
		fmt.Fprintf(&b, "%d=%d\n", i+1, s+1)
	}

	return []byte(b.String()), nil
}

// usedTreadles returns the treadles tied to at least one frame, ascending.
func usedTreadles(tieup [][]bool) []int {
	seen := make(map[int]bool)
	for _, row := range tieup {
		for t, up := range row {
			if up {
				seen[t] = true
			}
		}
	}
	out := make([]int, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

func distinct(s []int) int {
	seen := make(map[int]struct{}, len(s))
	for _, v := range s {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func filledInts(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
