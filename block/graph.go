package block

import "fmt"

// Validate check that the graph rooted at roots is a forest: no cycles along
// Next and Children and no block reachable twice
func Validate(roots ...*Block) error {
	seen := map[*Block]bool{}
	stack := make([]*Block, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i] != nil {
			stack = append(stack, roots[i])
		}
	}

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[b] {
			return fmt.Errorf("block %s is reachable twice, the graph has a cycle or a shared node", b.Label())
		}
		seen[b] = true

		if b.Kind == "" {
			return fmt.Errorf("block %s has no kind", b.Label())
		}

		if b.Next != nil {
			stack = append(stack, b.Next)
		}
		for i := len(b.Children) - 1; i >= 0; i-- {
			if b.Children[i] == nil {
				return fmt.Errorf("block %s has a nil child", b.Label())
			}
			stack = append(stack, b.Children[i])
		}
	}
	return nil
}

// Walk visit every block of the graph once, stop when fn returns false
func Walk(fn func(b *Block) bool, roots ...*Block) {
	seen := map[*Block]bool{}
	stack := append([]*Block{}, roots...)
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b == nil || seen[b] {
			continue
		}
		seen[b] = true
		if !fn(b) {
			return
		}
		stack = append(stack, b.Next)
		stack = append(stack, b.Children...)
	}
}

// Count the number of blocks of a script
func (script *Script) Count() int {
	n := 0
	Walk(func(*Block) bool { n++; return true }, script.Roots...)
	return n
}

// Validate the script graph
func (script *Script) Validate() error {
	if err := Validate(script.Roots...); err != nil {
		return fmt.Errorf("script %s: %w", script.ID, err)
	}
	return nil
}
