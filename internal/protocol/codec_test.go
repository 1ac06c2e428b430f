package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	opcode, args := Parse("AD 10001/192.168.1.7 250\n")
	assert.Equal(t, "AD", opcode)
	assert.Equal(t, []string{"10001/192.168.1.7", "250"}, args)
}

func TestParseUppercasesLowercaseOpcode(t *testing.T) {
	opcode, args := Parse("  bc   ")
	assert.Equal(t, "BC", opcode)
	assert.Empty(t, args)
}

func TestParseEmptyLine(t *testing.T) {
	opcode, args := Parse("")
	assert.Equal(t, "", opcode)
	assert.Nil(t, args)
}

func TestFormatSuccessWithResult(t *testing.T) {
	result := "10001/192.168.1.7"
	assert.Equal(t, "AC 10001/192.168.1.7\n", Format("AC", &result, nil))
}

func TestFormatSuccessNoResult(t *testing.T) {
	assert.Equal(t, "AD\n", Format("AD", nil, nil))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "ER Insufficient funds\n", Format("AW", nil, errors.New("Insufficient funds")))
}

func TestFormatErrorWinsOverResult(t *testing.T) {
	result := "ignored"
	assert.Equal(t, "ER Account not found\n", Format("AB", &result, errors.New("Account not found")))
}
