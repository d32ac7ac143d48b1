package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseValue(t *testing.T) {
	resp := ResponseValue(json.RawMessage(`{"rows":[]}`))

	assert.True(t, resp.OK)
	assert.False(t, resp.Failed())
	assert.JSONEq(t, `{"rows":[]}`, string(resp.Value))
}

func TestResponseVerdict_WireFormat(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want string
	}{
		{name: "accepted", ok: true, want: `{"ok":true}`},
		{name: "rejected", ok: false, want: `{"ok":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(ResponseVerdict(tt.ok))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestResponseError(t *testing.T) {
	detail := NewErrorDetail("invalid_data", "unexpected end of JSON input").WithCode("decode")
	resp := ResponseError(detail)

	assert.False(t, resp.OK)
	assert.True(t, resp.Failed())
	require.NotNil(t, resp.Error)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":{"message":"unexpected end of JSON input","type":"invalid_data","code":"decode"}}`, string(data))
}

func TestErrorDetail_Error(t *testing.T) {
	inner := NewErrorDetail("internal", "boom")
	outer := NewErrorDetail("collaborator", "prove failed").WithCode("process")
	outer.Cause = inner

	assert.Equal(t, "collaborator: prove failed [process]: boom", outer.Error())
	assert.Equal(t, "boom", inner.Error())

	var nilDetail *ErrorDetail
	assert.Empty(t, nilDetail.Error())
}

func TestSelfTestReport_Passed(t *testing.T) {
	assert.False(t, SelfTestReport{}.Passed(), "an empty report proves nothing")

	report := SelfTestReport{Checks: []CheckResult{
		{Name: "entropy", Passed: true},
		{Name: "round_trip", Passed: true},
	}}
	assert.True(t, report.Passed())

	report.Checks = append(report.Checks, CheckResult{Name: "verify", Passed: false})
	assert.False(t, report.Passed())
}

func TestCallToken_String(t *testing.T) {
	assert.Equal(t, "18446744073709551615", CallToken(^uint64(0)).String())
	assert.Equal(t, "0", CallToken(0).String())
}
