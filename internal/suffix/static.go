package suffix

// Compiled endpoint tables for the registries that account for nearly all
// traffic. These resolve without network I/O and take precedence over the
// bootstrap feed and the synced WHOIS directory.

var staticRDAPBases = map[string]string{
	"com":  "https://rdap.verisign.com/com/v1",
	"net":  "https://rdap.verisign.com/net/v1",
	"org":  "https://rdap.publicinterestregistry.org/rdap",
	"info": "https://rdap.identitydigital.services/rdap",
	"io":   "https://rdap.nic.io",
	"co":   "https://rdap.nic.co",
	"me":   "https://rdap.nic.me",
	"xyz":  "https://rdap.nic.xyz",
	"app":  "https://rdap.nic.google/rdap",
	"dev":  "https://rdap.nic.google/rdap",
	"ai":   "https://rdap.nic.ai",
	"sh":   "https://rdap.nic.sh",
	"uk":   "https://rdap.nominet.uk/uk",
	"us":   "https://rdap.nic.us",
	"cc":   "https://rdap.verisign.com/cc/v1",
	"tv":   "https://rdap.verisign.com/tv/v1",
}

var staticWhoisHosts = map[string]string{
	"com":   "whois.verisign-grs.com",
	"net":   "whois.verisign-grs.com",
	"org":   "whois.pir.org",
	"info":  "whois.afilias.net",
	"io":    "whois.nic.io",
	"co":    "whois.nic.co",
	"me":    "whois.nic.me",
	"xyz":   "whois.nic.xyz",
	"app":   "whois.nic.google",
	"dev":   "whois.nic.google",
	"ai":    "whois.nic.ai",
	"sh":    "whois.nic.sh",
	"uk":    "whois.nic.uk",
	"co.uk": "whois.nic.uk",
	"us":    "whois.nic.us",
	"cc":    "ccwhois.verisign-grs.com",
	"tv":    "tvwhois.verisign-grs.com",
	"de":    "whois.denic.de",
	"fr":    "whois.nic.fr",
	"jp":    "whois.jprs.jp",
	"cn":    "whois.cnnic.cn",
	"ru":    "whois.tcinet.ru",
	"kr":    "whois.kr",
	"ca":    "whois.cira.ca",
	"au":    "whois.auda.org.au",
	"biz":   "whois.biz",
	"mobi":  "whois.dotmobiregistry.net",
	"edu":   "whois.educause.edu",
}
