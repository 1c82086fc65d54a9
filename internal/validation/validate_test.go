package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/labdocs/internal/value"
)

func decode(t *testing.T, doc string) value.Value {
	t.Helper()
	v, err := value.Decode([]byte(doc))
	require.NoError(t, err)
	return v
}

const validConfig = `
domain:
  internal: home.lan
networks:
  mgmt: {vlan_id: 10, subnet: 10.0.10.0/24, gateway: 10.0.10.1}
  iot: {vlan_id: 30, subnet: 10.0.30.0/24, gateway: 10.0.30.1}
services:
  grafana: {enabled: true, host: pve1, ip: 10.0.10.20}
  jellyfin: {enabled: false}
`

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.Empty(t, Validate(decode(t, validConfig)))
}

func TestValidateRequiredFields(t *testing.T) {
	errs := Validate(value.Mapping())
	assert.Equal(t, []string{
		"Missing required field: domain.internal",
		"Missing required field: networks",
		"Missing required field: services",
	}, errs)
}

func TestValidateRequiredThroughScalar(t *testing.T) {
	errs := Validate(decode(t, "domain: home.lan\nnetworks: {}\nservices: {}\n"))
	assert.Equal(t, []string{"Missing required field: domain.internal"}, errs)
}

func TestValidateNullSectionIsMissing(t *testing.T) {
	errs := Validate(decode(t, "domain: {internal: home.lan}\nnetworks:\nservices: {}\n"))
	assert.Equal(t, []string{"Missing required field: networks"}, errs)
}

func TestValidateServices(t *testing.T) {
	t.Run("enabled service without ip", func(t *testing.T) {
		errs := Validate(decode(t, `
domain: {internal: home.lan}
networks: {}
services:
  grafana: {enabled: true, host: pve1}
`))
		assert.Equal(t, []string{"Enabled service 'grafana' missing field: ip"}, errs)
	})

	t.Run("disabled service without ip", func(t *testing.T) {
		errs := Validate(decode(t, `
domain: {internal: home.lan}
networks: {}
services:
  grafana: {enabled: false, host: pve1}
  loki: {host: pve2}
`))
		assert.Empty(t, errs)
	})

	t.Run("non-mapping service is skipped silently", func(t *testing.T) {
		errs := Validate(decode(t, `
domain: {internal: home.lan}
networks: {}
services:
  legacy: "see wiki"
`))
		assert.Empty(t, errs)
	})

	t.Run("null field still counts as present", func(t *testing.T) {
		errs := Validate(decode(t, `
domain: {internal: home.lan}
networks: {}
services:
  grafana: {enabled: yes, host: pve1, ip: ~}
`))
		assert.Empty(t, errs)
	})

	t.Run("both fields missing", func(t *testing.T) {
		errs := Validate(decode(t, `
domain: {internal: home.lan}
networks: {}
services:
  grafana: {enabled: 1}
`))
		assert.Equal(t, []string{
			"Enabled service 'grafana' missing field: host",
			"Enabled service 'grafana' missing field: ip",
		}, errs)
	})
}

func TestValidateNetworks(t *testing.T) {
	t.Run("string entry", func(t *testing.T) {
		errs := Validate(decode(t, `
domain: {internal: home.lan}
networks:
  lan: "10.0.0.0/24"
services: {}
`))
		assert.Equal(t, []string{"Network 'lan' must be a dictionary"}, errs)
	})

	t.Run("missing fields in order", func(t *testing.T) {
		errs := Validate(decode(t, `
domain: {internal: home.lan}
networks:
  lan: {subnet: 10.0.0.0/24}
services: {}
`))
		assert.Equal(t, []string{
			"Network 'lan' missing field: vlan_id",
			"Network 'lan' missing field: gateway",
		}, errs)
	})

	t.Run("section of wrong shape", func(t *testing.T) {
		errs := Validate(decode(t, `
domain: {internal: home.lan}
networks: [lan, iot]
services: {}
`))
		assert.Equal(t, []string{"Field 'networks' must be a dictionary"}, errs)
	})
}

func TestValidateOrdering(t *testing.T) {
	errs := Validate(decode(t, `
networks:
  b: {vlan_id: 2, subnet: x}
  a: 7
services:
  svc: {enabled: true}
`))
	assert.Equal(t, []string{
		"Missing required field: domain.internal",
		"Network 'b' missing field: gateway",
		"Network 'a' must be a dictionary",
		"Enabled service 'svc' missing field: host",
		"Enabled service 'svc' missing field: ip",
	}, errs)
}

func TestSummarize(t *testing.T) {
	s := Summarize(decode(t, validConfig))
	assert.Equal(t, Summary{Networks: 2, Services: 2, EnabledServices: 1}, s)

	assert.Equal(t, Summary{}, Summarize(value.Mapping()))
}
