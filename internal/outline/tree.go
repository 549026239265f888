package outline

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgallion1/docoutline/internal/anchor"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

// arenaNode is a tree node addressed by index. Children hold indices into
// the same arena, so the stack never holds pointers into a growing slice.
type arenaNode struct {
	id       string
	title    string
	level    int
	children []int
}

// BuildTree turns scanned headings into a nested outline forest.
//
// Headings outside levels 2..MaxLevel(depth), or with an empty id or title,
// are skipped before any override. In hybrid mode the data-outline*
// overrides apply: a false-like data-outline drops the heading, a
// data-outline-title with text left after tag stripping replaces the title
// and a data-outline-level in [2,6] moves the heading (capped at MaxLevel).
// An unusable level override is logged and ignored.
func BuildTree(headings []doctree.HeadingRecord, mode Mode, depth int, log *slog.Logger) []*doctree.Node {
	if log == nil {
		log = slog.Default()
	}
	maxLevel := MaxLevel(depth)

	// Index 0 is a virtual level-1 root that is never emitted.
	arena := []arenaNode{{level: 1}}
	stack := []int{0}

	for _, h := range headings {
		level := h.Level
		if level < 2 || level > maxLevel {
			continue
		}

		id := anchor.Sanitize(h.ID)
		title := strings.TrimSpace(h.Title)
		if id == "" || title == "" {
			continue
		}

		if mode == ModeHybrid {
			if IsFalseLike(h.Outline) {
				continue
			}
			if t := parser.NormalizeTitle(h.OutlineTitle); t != "" {
				title = t
			}
			if raw := strings.TrimSpace(h.OutlineLevel); raw != "" {
				forced, err := strconv.Atoi(raw)
				if err != nil || forced < 2 || forced > 6 {
					log.Warn("invalid outline level override", "id", id, "value", raw)
				} else {
					level = min(forced, maxLevel)
				}
			}
		}

		for len(stack) > 1 && arena[stack[len(stack)-1]].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]

		arena = append(arena, arenaNode{id: id, title: title, level: level})
		idx := len(arena) - 1
		arena[parent].children = append(arena[parent].children, idx)
		stack = append(stack, idx)
	}

	return materialize(arena, arena[0].children)
}

func materialize(arena []arenaNode, indices []int) []*doctree.Node {
	if len(indices) == 0 {
		return nil
	}
	nodes := make([]*doctree.Node, 0, len(indices))
	for _, i := range indices {
		a := arena[i]
		nodes = append(nodes, &doctree.Node{
			ID:       a.id,
			Title:    a.title,
			Level:    a.level,
			Children: materialize(arena, a.children),
		})
	}
	return nodes
}
