package table

import (
	"github.com/lixenwraith/tabletop/physics"
	"github.com/lixenwraith/tabletop/vmath"
	"go.uber.org/zap"
)

// settle pins simulated cards that have slowed down at their exact rest height
// Flipping and dragged cards are pinned already and never reach here
func (c *Controller) settle() {
	for id, h := range c.reg.All() {
		if h.Mode() != physics.ModeSimulated {
			continue
		}
		if c.busy(id) {
			continue
		}
		if vmath.V3FMag(h.Velocity()) >= c.tune.settleSpeed {
			continue
		}
		c.rest(id, h)
		c.count(MetricSettles)
		c.log.Debug("card settled", zap.String("card", id), zap.Float64("y", h.Position().Y))
	}
}
