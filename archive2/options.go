package archive2

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Channel names a data moment block (User 3.2.4.17.6)
type Channel string

const (
	REF Channel = "REF"
	VEL Channel = "VEL"
	SW  Channel = "SW"
	ZDR Channel = "ZDR"
	PHI Channel = "PHI"
	RHO Channel = "RHO"
)

// AllChannels in the order their data block pointers are stored, after the VOL, ELV and RAD blocks.
var AllChannels = []Channel{REF, VEL, SW, ZDR, PHI, RHO}

// ParseChannel accepts the block name as it appears on disk ("SW " included)
func ParseChannel(name string) (Channel, bool) {
	switch name {
	case "SW ", "sw", "sw ":
		return SW, true
	}
	for _, ch := range AllChannels {
		if string(ch) == name {
			return ch, true
		}
	}
	return "", false
}

// Options controls a decode pass.
type Options struct {
	// Channels to decode. Nil decodes all of them.
	Channels []Channel

	// Logger defaults to the logrus standard logger.
	Logger logrus.Ext1FieldLogger
}

func (o Options) wants(ch Channel) bool {
	if o.Channels == nil {
		return true
	}
	for _, c := range o.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

func (o Options) logger() logrus.Ext1FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// DiscardLogger returns a logger that drops everything, for callers that want a silent decode.
func DiscardLogger() logrus.Ext1FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
