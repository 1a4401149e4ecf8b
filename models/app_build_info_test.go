package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppBuildInfo(t *testing.T) {
	info := NewAppBuildInfo("1.4.0", "", "c0ffee")

	assert.Equal(t, AppBuildInfo{Version: "1.4.0", Date: "N/A", Commit: "c0ffee"}, info)
	assert.Equal(t, "Build version: 1.4.0\nBuild date: N/A\nBuild commit: c0ffee\n", info.String())
}
