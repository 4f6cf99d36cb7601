package combat

type Vec2 struct{ X, Y float64 }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Slot layout relative to the rope axis: enemies stand above it in rows
// 1..n, allied holders below it.
const (
	columnOffsetX = 0.7
	rowSpacingY   = 1.0
)

func slotOffset(side Side, slot Slot) Vec2 {
	x := columnOffsetX
	if slot.Column == Left {
		x = -x
	}
	y := float64(slot.Row+1) * rowSpacingY
	if side == Allied {
		y = -y
	}
	return Vec2{X: x, Y: y}
}
