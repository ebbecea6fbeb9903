package policy

// Curated origins with known direct-query behavior. Origins absent from both
// lists start Unknown and are classified from live traffic.
var defaultAllowedOrigins = []string{
	"https://rdap.verisign.com",
	"https://rdap.org",
	"https://rdap.publicinterestregistry.org",
	"https://rdap.centralnic.com",
	"https://rdap.identitydigital.services",
	"https://rdap.nominet.uk",
	"https://rdap.nic.io",
	"https://rdap.nic.co",
	"https://rdap.nic.xyz",
	"https://rdap.nic.google",
}

var defaultBlockedOrigins = []string{
	// Registries that reset direct connections from cloud networks and only
	// answer via the relay.
	"https://rdap.cnnic.cn",
	"https://rdap.jprs.jp",
}
