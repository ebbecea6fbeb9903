package whois

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const verisignStyleReply = `   Domain Name: EXAMPLE.COM
   Registry Domain ID: 2336799_DOMAIN_COM-VRSN
   Registrar: RESERVED-Internet Assigned Numbers Authority
   Updated Date: 2026-08-14T07:01:44Z
   Creation Date: 1995-08-14T04:00:00Z
   Registry Expiry Date: 2027-08-13T04:00:00Z
   Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited
   Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited
   Name Server: A.IANA-SERVERS.NET
   Name Server: B.IANA-SERVERS.NET
   DNSSEC: signedDelegation
`

const registrantStyleReply = `Domain Name: sample.org
Registrar: Example Registrar LLC
Registrant Name: REDACTED FOR PRIVACY
Registrant Organization: Privacy service provided by Withheld for Privacy ehf
Registrant Country: IS
Registrant Email: select request on website
Name Server: dara.ns.cloudflare.com
DNSSEC: unsigned
`

const availableReply = `No match for "SURELY-UNREGISTERED-12345.COM".
>>> Last update of whois database: 2026-08-31T00:00:00Z <<<
`

const denicStyleReply = `Domain: beispiel.de
Nserver: ns1.beispiel.de
Nserver: ns2.beispiel.de
Status: connect
Changed: 2020-01-15T10:25:53+01:00
`

type ParseSuite struct {
	suite.Suite
}

func TestParseSuite(t *testing.T) {
	suite.Run(t, new(ParseSuite))
}

func (s *ParseSuite) TestRegisteredReply() {
	raw, available, ok := Parse("example.com", verisignStyleReply)
	s.Require().True(ok)
	s.False(available)

	s.Equal("RESERVED-Internet Assigned Numbers Authority", raw.Registrar)
	s.Equal([]string{"A.IANA-SERVERS.NET", "B.IANA-SERVERS.NET"}, raw.NameServers)
	s.Equal([]string{"clientDeleteProhibited", "clientTransferProhibited"}, raw.Statuses,
		"trailing ICANN URLs must be stripped from status lines")
	s.True(raw.DNSSEC)

	s.Require().NotNil(raw.CreatedAt)
	s.Equal(time.Date(1995, 8, 14, 4, 0, 0, 0, time.UTC), *raw.CreatedAt)
	s.Require().NotNil(raw.ExpiresAt)
	s.Equal(time.Date(2027, 8, 13, 4, 0, 0, 0, time.UTC), *raw.ExpiresAt)
	s.Require().NotNil(raw.UpdatedAt)

	s.NotEmpty(raw.RawCapture, "raw reply must be captured for audit")
}

func (s *ParseSuite) TestRegistrantExtraction() {
	raw, available, ok := Parse("sample.org", registrantStyleReply)
	s.Require().True(ok)
	s.False(available)

	s.Require().NotNil(raw.Registrant)
	s.Equal("REDACTED FOR PRIVACY", raw.Registrant.Name)
	s.Equal("IS", raw.Registrant.Country)
	s.False(raw.DNSSEC, "unsigned must not read as signed")
}

func (s *ParseSuite) TestAvailableReply() {
	raw, available, ok := Parse("surely-unregistered-12345.com", availableReply)
	s.Require().True(ok)
	s.True(available)
	s.Empty(raw.Registrar)
}

func (s *ParseSuite) TestTerseRegistryLayout() {
	raw, available, ok := Parse("beispiel.de", denicStyleReply)
	s.Require().True(ok)
	s.False(available)
	s.Equal([]string{"ns1.beispiel.de", "ns2.beispiel.de"}, raw.NameServers)
	s.Equal([]string{"connect"}, raw.Statuses)
}

func (s *ParseSuite) TestUnrecognizableReply() {
	_, _, ok := Parse("odd.test", "%% some banner nobody can interpret\n%% rate limit exceeded\n")
	s.False(ok)
}
