package hwlib

import (
	"strconv"

	"github.com/db47h/hwdiv"
)

// ROM returns a read only memory holding the given words. Words are
// truncated to dataWidth bits.
//
//	Inputs: addr[addrWidth]
//	Outputs: data[dataWidth]
//	Function: data = words[addr], or 0 if addr >= len(words)
//
func ROM(addrWidth, dataWidth int, words []uint64) hwdiv.NewPartFn {
	mem := make([]uint64, len(words))
	copy(mem, words)
	return (&hwdiv.PartSpec{
		Name:    "ROM" + strconv.Itoa(len(mem)),
		Inputs:  pins(addrWidth, pAddr),
		Outputs: pins(dataWidth, pData),
		Mount: func(s *hwdiv.Socket) []hwdiv.Component {
			addr, data := s.Pin(pAddr), s.Pin(pData)
			return []hwdiv.Component{func(c *hwdiv.Circuit) {
				if a := c.Get(addr); a < uint64(len(mem)) {
					c.Set(data, mem[a])
				} else {
					c.Set(data, 0)
				}
			}}
		},
	}).NewPart
}
