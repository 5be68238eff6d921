//go:build wasip1

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptQuotesChannel(t *testing.T) {
	sql := script(`jobs; DROP TABLE jobs; --`)
	assert.Contains(t, sql, `LISTEN "jobs; DROP TABLE jobs; --";`)
	assert.Contains(t, sql, `NOTIFY "jobs; DROP TABLE jobs; --", 'hello from the guest'`)

	assert.Contains(t, script(`Audit "Log"`), `LISTEN "Audit ""Log""";`)
}
