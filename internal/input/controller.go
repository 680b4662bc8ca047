// Package input implements the standard NES joypads at $4016/$4017.
package input

import (
	"strings"

	"github.com/golang/glog"
)

// Button represents NES controller buttons, in the order they are shifted out.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var buttonNames = [8]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	var names []string
	for i, name := range buttonNames {
		if b&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// openBus is the high byte of $4016/$4017 left on the data bus; the pads only
// drive bit 0.
const openBus = 0x40

// Controller represents a NES controller
type Controller struct {
	buttons uint8

	// latched on the falling edge of strobe; reads shift it out
	shiftRegister uint8
	reads         uint8
	strobe        bool
}

// New creates a new Controller instance
func New() *Controller {
	return &Controller{}
}

// SetButton presses or releases one button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces the whole button state.
func (c *Controller) SetButtons(buttons Button) {
	c.buttons = uint8(buttons)
}

// Buttons returns the buttons currently held.
func (c *Controller) Buttons() Button {
	return Button(c.buttons)
}

// IsPressed returns true if the button is currently pressed
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles writes to the controller register ($4016)
func (c *Controller) Write(value uint8) {
	c.strobe = value&1 != 0
	if c.strobe {
		return
	}
	c.shiftRegister = c.buttons
	c.reads = 0
}

// Read returns the next button bit. While strobe is high the pad keeps
// reloading, so every read returns A; after eight reads an official pad
// returns 1.
func (c *Controller) Read() uint8 {
	if c.strobe {
		return c.buttons & 1
	}
	if c.reads >= 8 {
		return 1
	}
	bit := c.shiftRegister & 1
	c.shiftRegister >>= 1
	c.reads++
	return bit
}

// Reset releases every button and clears the shift state.
func (c *Controller) Reset() {
	*c = Controller{}
}

// Ports connects two controllers to $4016 and $4017.
type Ports struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewPorts creates the two controller ports.
func NewPorts() *Ports {
	return &Ports{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets all input devices
func (p *Ports) Reset() {
	p.Controller1.Reset()
	p.Controller2.Reset()
}

// Read reads from controller ports
func (p *Ports) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return openBus | p.Controller1.Read()
	case 0x4017:
		return openBus | p.Controller2.Read()
	}
	return 0
}

// Write writes to controller ports. Both pads share the strobe line.
func (p *Ports) Write(address uint16, value uint8) {
	if address != 0x4016 {
		return
	}
	if glog.V(3) {
		glog.Infof("input: strobe=%d pad1=%s pad2=%s", value&1, p.Controller1.Buttons(), p.Controller2.Buttons())
	}
	p.Controller1.Write(value)
	p.Controller2.Write(value)
}
