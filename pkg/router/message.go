package router

import (
	"bytes"
	"fmt"

	"go.minekube.com/common/minecraft/color"
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/component/codec"
)

// disconnectComponent renders msg as a plain red text component with no
// translation arguments.
func disconnectComponent(msg string) component.Component {
	return &component.Text{Content: msg, S: component.Style{Color: color.Red}}
}

// plainReason renders msg as the plain-text form the Configuration phase's
// Disconnect packet carries through WriteTextComponent's NBT TAG_String
// encoding.
func plainReason(msg string) (string, error) {
	var buf bytes.Buffer
	if err := (&codec.Plain{}).Marshal(&buf, disconnectComponent(msg)); err != nil {
		return "", fmt.Errorf("router: marshal disconnect reason: %w", err)
	}
	return buf.String(), nil
}
