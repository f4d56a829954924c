package agent

import "hive/llm"

// Coder owns exactly one file. CHANGE, REPLACE and INSERT may touch only
// that file; everything else the coder sees is a read-only snapshot.
type Coder struct {
	Base
}

// NewCoder creates a coder agent owning the file at scopePath
func NewCoder(scopePath, parentPath string) *Coder {
	return &Coder{
		Base: newBase(KindCoder, scopePath, parentPath, scopePath, llm.PurposeCoder),
	}
}

// OwnFile returns the single file this coder may mutate
func (c *Coder) OwnFile() string { return c.path }
