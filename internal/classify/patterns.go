package classify

import (
	"regexp"

	"github.com/sells-group/hardware-cli/internal/model"
)

type ruleSet struct {
	Type     model.ComponentType
	Patterns []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// rules is ordered; earlier types win ties.
var rules = []ruleSet{
	{model.ComponentCPU, compile(
		`\bintel\b`, `\bamd\b`,
		`\bryzen\b`, `\bxeon\b`, `\bthreadripper\b`, `\bepyc\b`,
		`\bathlon\b`, `\bopteron\b`, `\bcore\b`,
		`\bi[3579]-[0-9]{4,5}`, `\bi[3579]\s+[0-9]{4,5}`,
		`\b[0-9]{4,5}kf?\b`,
		`\b[0-9]{4,5}x3?d?\b`,
		`\bprocessor\b`, `\bcpu\b`,
	)},
	{model.ComponentRAM, compile(
		`\bddr[3-5]\b`, `\bsodimm\b`, `\bdimm\b`, `\bdram\b`,
		`\bmemory\b`, `\bmt/s\b`, `\bmhz\b`,
		`\bcorsair\b`, `\bkingston\b`, `\bgskill\b`, `\bg\.skill\b`,
		`\bcrucial\b`, `\bteamgroup\b`, `\bteam\s*group\b`,
		`\bpatriot\b`, `\blexar\b`, `\badata\b`,
		`\bcmk[0-9]+gx[0-9]`, `\bcmw[0-9]+gx[0-9]`, `\bcmt[0-9]+gx[0-9]`,
		`\bkf[45][0-9]{2}[a-z]`, `\bkf[a-z]*[0-9]+`,
		`^f[45]-[0-9]{4}[a-z]`,
		`\bf[45]-[0-9]{4}[a-z]`,
		`\bct[0-9]+g[0-9]`,
		`\bbl[0-9]+[gk]`,
		`\bct[0-9]*k[0-9]+g`,
		`\bad[45]u[0-9]+`,
		`\bad[45]s[0-9]+`,
		`\bpv[a-z][0-9]+g`,
		`\btf[0-9]+[a-z]*[0-9]+g`,
		`\btf[0-9]+d[0-9]+`,
		`\bflare[0-9]*-[0-9]+`,
		`\bvengeance\b`, `\bdominator\b`, `\bfury\b`,
		`\btrident\b`, `\bripjaws\b`, `\bballistix\b`,
		`\bhyperx\b`, `\bpredator\b`, `\bbeast\b`,
		`\bviper\b`, `\bflare\b`,
	)},
	{model.ComponentGPU, compile(
		`\bnvidia\b`, `\bamd\b`,
		`\bgeforce\b`, `\bquadro\b`, `\btitan\b`,
		`\brtx\s*[0-9]{4}\b`,
		`\bgtx\s*[0-9]{4}\b`,
		`\brtx\b`, `\bgtx\b`,
		`\bradeon\b`, `\bfirepro\b`,
		`\brx\s*[0-9]{4}\b`,
		`\barc\s*a[0-9]{3}\b`,
		`\barc\b`,
		`\b[0-9]{4}\s*ti\b`, `\b[0-9]{4}\s*super\b`, `\b[0-9]{4}\s*xt\b`,
		`\bgpu\b`, `\bgfx\b`, `\bgraphics\b`, `\bvideo\s*card\b`,
	)},
	{model.ComponentMainboard, compile(
		`\bmotherboard\b`, `\bmainboard\b`, `\bplaca\s*base\b`,
		`\bz[0-9]{3}\b`, `\bb[0-9]{3}\b`, `\bh[0-9]{3}\b`,
		`\bx[0-9]{3}\b`, `\bw[0-9]{3}\b`,
		`\ba[0-9]{3}\b`, `\bx[0-9]{3}e?\b`,
		`\basus\b`, `\bmsi\b`, `\bgigabyte\b`, `\basrock\b`,
		`\bprime\b`, `\brog\b`, `\bstrix\b`, `\btuf\b`,
		`\baorus\b`, `\bmeg\b`, `\bmpg\b`, `\bmag\b`,
		`\bphantom\b`, `\bsteel\b`, `\btaichi\b`,
		`\batx\b`, `\bmicro\s*atx\b`, `\bmini\s*itx\b`, `\be-atx\b`,
	)},
	{model.ComponentDisk, compile(
		`\bssd\b`, `\bhdd\b`, `\bnvme\b`, `\bm\.2\b`, `\bsata\b`,
		`\bsamsung\b`, `\bseagate\b`, `\bwd\b`, `\bwestern\s*digital\b`,
		`\bcrucial\b`, `\bkingston\b`, `\bkioxia\b`, `\bsk\s*hynix\b`,
		`\bsandisk\b`, `\btoshiba\b`, `\bphison\b`, `\bsabrent\b`,
		`\bgigabyte\b`, `\bcorsair\b`, `\badata\b`,
		`^mz-v[0-9]`, `\bmz-v[0-9]`,
		`^mz-7[0-9]`, `\bmz-7[0-9]`,
		`\bsfy[a-z]+[0-9]`,
		`\bksf[0-9]+`,
		`\bkc[0-9]{4}\b`,
		`\baleg-[0-9]+`,
		`\basu[0-9]+`,
		`\bgp-ag[0-9]+`,
		`\bgp-gst`,
		`\bcssd-[a-z]*[0-9]+`,
		`\bmp[0-9]{3}\b`,
		`\b[0-9]kpn[a-z]`,
		`\bshpp[0-9]+`,
		`\bdram[0-9]+[a-z]`,
		`\bsb-rocket`,
		`\bct[0-9]+p[0-9]`,
		`\bevo\b`, `\bqvo\b`, `\b9[789]0\s*pro\b`, `\b8[678]0\b`,
		`\bwds[0-9]+`,
		`\bsn[0-9]{3}\b`, `\bblack\b`, `\bblue\b`, `\bred\b`, `\bgold\b`,
		`\bbarracuda\b`, `\bironwolf\b`, `\bfirecuda\b`, `\bexos\b`,
		`\brocket\b`, `\blegend\b`, `\bplatinum\b`,
		`\b[0-9]+\s*[gt]b\b`, `\b[0-9]+\s*tb\b`,
		`\bpcie\b`, `\bgen[345]\b`,
	)},
}
