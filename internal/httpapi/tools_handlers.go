package httpapi

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"lanscape/internal/config"
	"lanscape/internal/core/ipparser"
)

// detectedSubnet is one local interface's address and the size of the
// subnet it sits in, grounded on original_source/libraries/net_tools.py's
// get_primary_network_subnet (interface -> address/netmask -> CIDR).
// LANscape surfaces every up, non-loopback IPv4 interface rather than
// just the "primary" one, since a UI picking a scan target benefits from
// seeing all of them.
type detectedSubnet struct {
	Interface  string `json:"interface"`
	Address    string `json:"address"`
	AddressCnt int    `json:"address_cnt"`
}

// getSubnetList handles GET /api/tools/subnet/list (spec §6: "Detected
// interfaces → [{address, address_cnt, ...}]") — enumerates local IPv4
// interfaces rather than expanding a query-provided expression (that's
// what getSubnetTest and a direct /api/scan call are for).
func (s *Server) getSubnetList(c *gin.Context) {
	ifaces, err := net.Interfaces()
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]detectedSubnet, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			cidr := ipnet.String()
			out = append(out, detectedSubnet{
				Interface:  iface.Name,
				Address:    cidr,
				AddressCnt: ipparser.GetAddressCount(cidr),
			})
		}
	}
	c.JSON(http.StatusOK, gin.H{"subnets": out})
}

// getSubnetTest handles GET /api/tools/subnet/test?subnet=... — reports
// whether an expression is valid and how many addresses it would expand
// to, without returning the full list (cheaper for a form's live-validate).
// Spec §6: `{valid, count, msg}`; `count=-1` for invalid.
func (s *Server) getSubnetTest(c *gin.Context) {
	expr := c.Query("subnet")
	ips, err := ipparser.Parse(expr)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"subnet": expr, "valid": false, "count": -1, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subnet": expr, "valid": true, "count": len(ips), "msg": ""})
}

// getConfigDefaults handles GET /api/tools/config/defaults.
func (s *Server) getConfigDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, config.DefaultScanConfig())
}
