package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application/services"
	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	cmd := newRootCmd(services.NewCardService(func() time.Time { return now }))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_ValidCard(t *testing.T) {
	out, err := run(t, "validate",
		"--number", "4242 4242 4242 4242",
		"--month", "12",
		"--year", "2028",
		"--cvv", "123",
		"--holder", "Juan Perez",
	)

	require.NoError(t, err)
	assert.Contains(t, out, "valid:   true")
	assert.Contains(t, out, "type:    VISA")
	assert.Contains(t, out, "****-****-****-4242")
}

func TestValidate_InvalidCardJSON(t *testing.T) {
	out, err := run(t, "validate", "-j",
		"--number", "4242424242424241",
		"--month", "12",
		"--year", "2028",
		"--cvv", "123",
		"--holder", "Juan Perez",
	)

	assert.ErrorIs(t, err, errCardInvalid)
	var resp rest.CardValidationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.IsValid)
	assert.Equal(t, "Invalid card number", resp.Message)
}

func TestClassify(t *testing.T) {
	out, err := run(t, "classify", "5105105105105100", "378282246310005", "6011000990139424")

	require.NoError(t, err)
	assert.Equal(t,
		"****-****-****-5100\tMASTERCARD\n"+
			"****-****-****-0005\tAMEX\n"+
			"****-****-****-9424\tUNKNOWN\n",
		out,
	)
}

func TestClassify_RequiresArgument(t *testing.T) {
	_, err := run(t, "classify")
	assert.Error(t, err)
}
