package movements

// Event is one entry in the static macro-event calendar.
type Event struct {
	Category    string // "generic", "gdp", "inflation", "unemployment", "energy"
	Description string
}

// Calendar maps a year to the macro events associated with it. The
// calendar is pure data, built once at process start and never mutated.
type Calendar map[int][]Event

// Lookup returns the description of the first event for year that
// matches indicatorKey, preferring category-specific events over
// generic ones. Returns "" when nothing matches.
func (c Calendar) Lookup(year int, indicatorKey string) string {
	events, ok := c[year]
	if !ok {
		return ""
	}
	for _, e := range events {
		if e.Category == indicatorKey {
			return e.Description
		}
	}
	for _, e := range events {
		if e.Category == "generic" {
			return e.Description
		}
	}
	return ""
}

// defaultCalendar is the built-in calendar of widely known macro events.
// Descriptions are heuristic context, not causal claims.
var defaultCalendar = Calendar{
	1973: {
		{Category: "energy", Description: "OPEC oil embargo quadrupled crude prices"},
		{Category: "generic", Description: "first oil shock hit industrial economies"},
	},
	1979: {
		{Category: "energy", Description: "Iranian revolution triggered the second oil shock"},
		{Category: "generic", Description: "second oil shock and global stagflation"},
	},
	1991: {
		{Category: "generic", Description: "dissolution of the Soviet Union and Gulf War disruption"},
	},
	1997: {
		{Category: "generic", Description: "Asian financial crisis spread across emerging markets"},
	},
	1998: {
		{Category: "generic", Description: "Russian default and ruble crisis"},
	},
	2001: {
		{Category: "generic", Description: "dot-com bust and post-9/11 slowdown"},
	},
	2008: {
		{Category: "gdp", Description: "global financial crisis contracted output worldwide"},
		{Category: "energy", Description: "crude spiked to record highs before collapsing"},
		{Category: "generic", Description: "global financial crisis"},
	},
	2009: {
		{Category: "gdp", Description: "deepest global recession since WWII"},
		{Category: "unemployment", Description: "post-crisis layoffs peaked in most OECD economies"},
		{Category: "generic", Description: "great recession trough"},
	},
	2010: {
		{Category: "generic", Description: "eurozone sovereign debt crisis began in Greece"},
	},
	2011: {
		{Category: "energy", Description: "Arab Spring disrupted North African oil supply"},
		{Category: "generic", Description: "eurozone debt crisis intensified"},
	},
	2014: {
		{Category: "energy", Description: "oil prices collapsed on US shale oversupply"},
		{Category: "generic", Description: "commodity price downturn hit exporters"},
	},
	2015: {
		{Category: "gdp", Description: "China slowdown and commodity slump weighed on growth"},
		{Category: "generic", Description: "China equity turbulence and commodity slump"},
	},
	2016: {
		{Category: "generic", Description: "Brexit referendum and weak global trade"},
	},
	2020: {
		{Category: "gdp", Description: "COVID-19 lockdowns caused a record output collapse"},
		{Category: "unemployment", Description: "pandemic shutdowns drove mass furloughs and layoffs"},
		{Category: "energy", Description: "pandemic demand collapse briefly sent oil futures negative"},
		{Category: "generic", Description: "COVID-19 pandemic"},
	},
	2021: {
		{Category: "gdp", Description: "post-pandemic reopening rebound"},
		{Category: "inflation", Description: "supply-chain bottlenecks began pushing prices up"},
		{Category: "generic", Description: "post-pandemic recovery"},
	},
	2022: {
		{Category: "inflation", Description: "energy shock after Russia's invasion of Ukraine drove inflation to multi-decade highs"},
		{Category: "energy", Description: "European gas prices surged after the invasion of Ukraine"},
		{Category: "generic", Description: "war in Ukraine and global energy shock"},
	},
	2023: {
		{Category: "inflation", Description: "aggressive central-bank tightening brought inflation off its peak"},
		{Category: "generic", Description: "fastest rate-hiking cycle in decades"},
	},
}

// DefaultCalendar returns the built-in macro-event calendar.
func DefaultCalendar() Calendar { return defaultCalendar }
