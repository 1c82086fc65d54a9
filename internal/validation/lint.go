package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"git.home.luguber.info/inful/labdocs/internal/value"
)

// Linter checks the format of fields that Validate only requires to exist.
// Its findings are warnings: a malformed subnet still renders.
type Linter struct {
	validate *validator.Validate
}

// NewLinter creates a Linter.
func NewLinter() *Linter {
	return &Linter{validate: validator.New()}
}

// Lint returns format warnings for root in section order.
func (l *Linter) Lint(root value.Value) []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if domain, ok := root.Lookup("domain.internal"); ok {
		if !l.check(domain, "fqdn|hostname_rfc1123") {
			warn("Domain '%s' is not a valid host name", domain)
		}
	}

	if networks, ok := root.Get("networks"); ok && networks.IsMapping() {
		for _, name := range networks.Keys() {
			network, _ := networks.Get(name)
			if !network.IsMapping() {
				continue
			}
			if vlan, ok := network.Get("vlan_id"); ok {
				if !l.checkVLAN(vlan) {
					warn("Network '%s' vlan_id '%s' is not an integer between 1 and 4094", name, vlan)
				}
			}
			if subnet, ok := network.Get("subnet"); ok && !l.check(subnet, "cidr") {
				warn("Network '%s' subnet '%s' is not a valid CIDR", name, subnet)
			}
			if gw, ok := network.Get("gateway"); ok && !l.check(gw, "ip") {
				warn("Network '%s' gateway '%s' is not a valid IP address", name, gw)
			}
		}
	}

	if services, ok := root.Get("services"); ok && services.IsMapping() {
		for _, name := range services.Keys() {
			service, _ := services.Get(name)
			if !service.IsMapping() {
				continue
			}
			if ip, ok := service.Get("ip"); ok && !l.check(ip, "ip") {
				warn("Service '%s' ip '%s' is not a valid IP address", name, ip)
			}
			if host, ok := service.Get("host"); ok && !l.check(host, "hostname_rfc1123") {
				warn("Service '%s' host '%s' is not a valid host name", name, host)
			}
		}
	}
	return warnings
}

// check validates a scalar rendered as a string against tag.
func (l *Linter) check(v value.Value, tag string) bool {
	if v.Kind() != value.KindScalar {
		return false
	}
	return l.validate.Var(v.String(), tag) == nil
}

func (l *Linter) checkVLAN(v value.Value) bool {
	id, ok := v.Raw().(int)
	if !ok {
		return false
	}
	return l.validate.Var(id, "min=1,max=4094") == nil
}
