package region

import "github.com/astei/nbt"

// Chunk binds one decoded chunk root to its in-region coordinates. It is
// immutable and shares no state with other chunks or with its Region.
type Chunk struct {
	x, z int
	root *nbt.Compound
}

// X returns the chunk's x coordinate inside its region, in [0, 32).
func (c *Chunk) X() int { return c.x }

// Z returns the chunk's z coordinate inside its region, in [0, 32).
func (c *Chunk) Z() int { return c.z }

// Root returns the chunk's root compound tag.
func (c *Chunk) Root() *nbt.Compound { return c.root }
