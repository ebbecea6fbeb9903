package normalize

import "strings"

// Curated identification tables. Both are ordered slices: matching is
// first-match-wins and must stay deterministic, so these are not maps.

var registrarWebsites = []struct {
	match   string
	website string
}{
	{"godaddy", "https://www.godaddy.com"},
	{"namecheap", "https://www.namecheap.com"},
	{"markmonitor", "https://markmonitor.com"},
	{"cloudflare", "https://www.cloudflare.com"},
	{"gandi", "https://www.gandi.net"},
	{"tucows", "https://www.tucows.com"},
	{"enom", "https://www.enom.com"},
	{"network solutions", "https://www.networksolutions.com"},
	{"porkbun", "https://porkbun.com"},
	{"dynadot", "https://www.dynadot.com"},
	{"name.com", "https://www.name.com"},
	{"namesilo", "https://www.namesilo.com"},
	{"squarespace", "https://domains.squarespace.com"},
	{"google", "https://domains.google"},
	{"ovh", "https://www.ovhcloud.com"},
	{"ionos", "https://www.ionos.com"},
	{"1&1", "https://www.ionos.com"},
	{"hover", "https://www.hover.com"},
	{"alibaba", "https://www.alibabacloud.com/domain"},
	{"aliyun", "https://www.alibabacloud.com/domain"},
	{"go daddy", "https://www.godaddy.com"},
	{"key-systems", "https://www.key-systems.net"},
	{"csc corporate", "https://www.cscdbs.com"},
}

var dnsProviders = []struct {
	match    string
	provider string
}{
	{"cloudflare.com", "Cloudflare"},
	{"awsdns", "Amazon Route 53"},
	{"azure-dns", "Azure DNS"},
	{"googledomains.com", "Google Cloud DNS"},
	{"ns-cloud", "Google Cloud DNS"},
	{"domaincontrol.com", "GoDaddy"},
	{"registrar-servers.com", "Namecheap"},
	{"dnsimple", "DNSimple"},
	{"dnsmadeeasy", "DNS Made Easy"},
	{"ultradns", "UltraDNS"},
	{"nsone.net", "NS1"},
	{"he.net", "Hurricane Electric"},
	{"digitalocean.com", "DigitalOcean"},
	{"linode.com", "Linode"},
	{"vercel-dns", "Vercel"},
	{"wixdns", "Wix"},
	{"squarespacedns", "Squarespace"},
	{"worldnic.com", "Network Solutions"},
	{"gandi.net", "Gandi"},
	{"porkbun.com", "Porkbun"},
}

// registrarWebsite identifies the registrar's site by case-insensitive
// substring match against the registrar name. No match leaves it unset.
func registrarWebsite(registrar string) string {
	if registrar == "" {
		return ""
	}
	lower := strings.ToLower(registrar)
	for _, entry := range registrarWebsites {
		if strings.Contains(lower, entry.match) {
			return entry.website
		}
	}
	return ""
}

// dnsProvider identifies the DNS provider from name-server hostnames. The
// first name server with a recognized hostname wins.
func dnsProvider(nameServers []string) string {
	for _, ns := range nameServers {
		lower := strings.ToLower(ns)
		for _, entry := range dnsProviders {
			if strings.Contains(lower, entry.match) {
				return entry.provider
			}
		}
	}
	return ""
}
