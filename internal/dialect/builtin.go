package dialect

// Canonical dialect names
const (
	IOS     = "ios"
	IOSXR   = "iosxr"
	NXOS    = "nxos"
	EOS     = "eos"
	Generic = "generic"
)

// builtinEntry pairs a dialect spec with the aliases it is registered under
type builtinEntry struct {
	spec    Spec
	aliases []string
}

var bangComments = []string{"!"}

// builtinSpecs returns the shipped dialect tables.
// A fresh slice is built on every call so no caller can mutate shared state.
func builtinSpecs() []builtinEntry {
	return []builtinEntry{
		{
			spec: Spec{
				Name: IOS,
				SectionStartPatterns: []string{
					`^interface\s+`,
					`^router\s+`,
					`^ip\s+access-list`,
					`^ipv6\s+access-list`,
					`^access-list`,
					`^ip\s+prefix-list`,
					`^ipv6\s+prefix-list`,
					`^ip\s+community-list`,
					`^ip\s+as-path\s+access-list`,
					`^event\s+manager\s+`,
					`^policy-map`,
					`^class-map`,
					`^route-map`,
					`^line\s+`,
					`^vlan\s+`,
					`^vrf\s+definition\s+`,
					`^ip\s+sla`,
					`^crypto\s+pki\s+`,
					`^track\s+`,
					`^control-plane$`,
					`^platform\s+`,
					`^controller\s+`,
					`^redundancy\s+`,
				},
				CommentPrefixes: bangComments,
				IgnoreLines:     []string{"end"},
			},
			aliases: []string{"ios", "iosxe", "ios-xe", "cisco-ios", "cisco-ios-xe"},
		},
		{
			spec: Spec{
				Name: IOSXR,
				SectionStartPatterns: []string{
					`^interface\s+`,
					`^router\s+`,
					`^ipv4\s+access-list`,
					`^ipv6\s+access-list`,
					`^ip\s+access-list`,
					`^access-list`,
					`^prefix-set`,
					`^as-path-set`,
					`^community-set`,
					`^route-policy`,
					`^policy-map`,
					`^class-map`,
					`^line\s+`,
					`^vrf\s+\S+`,
					`^telemetry\s+`,
					`^l2vpn\s+`,
					`^mpls\s+`,
					`^segment-routing\s+`,
				},
				CommentPrefixes: bangComments,
			},
			aliases: []string{"iosxr", "ios-xr", "cisco-ios-xr"},
		},
		{
			spec: Spec{
				Name: NXOS,
				SectionStartPatterns: []string{
					`^interface\s+`,
					`^router\s+`,
					`^ip\s+access-list`,
					`^ipv6\s+access-list`,
					`^access-list`,
					`^ip\s+prefix-list`,
					`^ipv6\s+prefix-list`,
					`^ip\s+community-list`,
					`^policy-map`,
					`^class-map`,
					`^route-map`,
					`^line\s+`,
					`^vlan\s+`,
					`^vrf\s+context\s+`,
					`^feature\s+`,
					`^hardware\s+`,
					`^system\s+`,
					`^vpc\s+`,
					`^evpn\s+`,
					`^fabricpath\s+`,
					`^monitor\s+session\s+`,
				},
				CommentPrefixes: bangComments,
				IgnoreLines:     []string{"end"},
			},
			aliases: []string{"nxos", "nx-os", "cisco-nxos"},
		},
		{
			spec: Spec{
				Name: EOS,
				SectionStartPatterns: []string{
					`^interface\s+`,
					`^router\s+`,
					`^ip\s+access-list`,
					`^ipv6\s+access-list`,
					`^access-list`,
					`^ip\s+prefix-list`,
					`^ipv6\s+prefix-list`,
					`^ip\s+community-list`,
					`^policy-map`,
					`^class-map`,
					`^route-map`,
					`^line\s+`,
					`^vlan\s+`,
					`^vrf\s+instance\s+`,
					`^daemon\s+`,
					`^agent\s+`,
					`^event-handler\s+`,
					`^management\s+api\s+`,
					`^transceiver\s+`,
					`^alias\s+`,
				},
				CommentPrefixes: bangComments,
				IgnoreLines:     []string{"end"},
			},
			aliases: []string{"eos", "arista-eos"},
		},
		{
			spec:    genericSpec(),
			aliases: []string{"generic"},
		},
	}
}

// genericSpec is the union vocabulary used when no dialect can be determined
func genericSpec() Spec {
	return Spec{
		Name: Generic,
		SectionStartPatterns: []string{
			`^interface\s+`,
			`^router\s+`,
			`^ipv4\s+access-list`,
			`^ipv6\s+access-list`,
			`^ip\s+access-list`,
			`^access-list`,
			`^ip\s+prefix-list`,
			`^ipv6\s+prefix-list`,
			`^ip\s+community-list`,
			`^ip\s+as-path\s+access-list`,
			`^policy-map`,
			`^class-map`,
			`^route-map`,
			`^route-policy`,
			`^prefix-set`,
			`^as-path-set`,
			`^community-set`,
			`^line\s+`,
			`^vlan\s+`,
			`^vrf\s+instance\s+`,
			`^vrf\s+context\s+`,
			`^vrf\s+definition\s+`,
			`^vrf\s+\S+`,
		},
		CommentPrefixes: bangComments,
		IgnoreLines:     []string{"end"},
	}
}

// builtinSignatures returns the weighted detection signatures per dialect.
// They are deliberately disjoint from the section-start tables.
func builtinSignatures() map[string][]SignatureSpec {
	return map[string][]SignatureSpec{
		IOSXR: {
			{`^\s*route-policy\b`, 4},
			{`^\s*prefix-set\b`, 4},
			{`^\s*as-path-set\b`, 3},
			{`^\s*community-set\b`, 3},
			{`^\s*end-policy\b`, 4},
			{`^\s*commit\b`, 2},
			{`RP/\d+/CPU\d+`, 2},
			{`^\s*telemetry\s+model-driven\b`, 2},
		},
		NXOS: {
			{`^\s*feature\s+\S+`, 4},
			{`^\s*vrf\s+context\b`, 4},
			{`^\s*hardware\s+\S+`, 2},
			{`^\s*vdc\s+\S+`, 3},
			{`^\s*switchname\s+\S+`, 2},
			{`^\s*interface\s+Ethernet\d+/\d+`, 1},
		},
		EOS: {
			{`^\s*daemon\s+\S+`, 4},
			{`^\s*agent\s+\S+`, 3},
			{`^\s*management\s+api\b`, 4},
			{`^\s*event-handler\b`, 4},
			{`^\s*transceiver\s+\S+`, 2},
			{`^\s*interface\s+Ethernet\d+`, 1},
		},
		IOS: {
			{`^\s*version\s+\d`, 2},
			{`^\s*service\s+timestamps\b`, 2},
			{`^\s*platform\s+\S+`, 2},
			{`^\s*ip\s+cef\b`, 1},
			{`^\s*line\s+vty\b`, 1},
			{`^\s*enable\s+secret\b`, 2},
		},
	}
}
