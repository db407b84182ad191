// Package fixtures provides the news set served when the live backend is not
// provisioned: a built-in list, or a JSON document kept in object storage.
package fixtures

import (
	"time"

	"github.com/bilgisen/newsinflight/internal/models"
)

type entry struct {
	id       string
	title    string
	source   string
	category string
	offset   time.Duration
	blurred  *bool
	levels   [3]string
	worst    map[string]string
	tips     map[string]string
}

func flag(b bool) *bool { return &b }

var builtin = []entry{
	{
		id:       "mock-fed-hold",
		title:    "Fed keeps policy rate unchanged for a third meeting",
		source:   "Reuters",
		category: "bond",
		offset:   9 * time.Hour,
		blurred:  flag(true),
		levels: [3]string{
			"The US central bank did not change interest rates, so borrowing costs stay where they are.",
			"The Federal Reserve held its benchmark rate, signalling it wants more evidence that inflation is cooling before cutting.",
			"The FOMC held the target range steady; the dot plot implies fewer cuts, keeping the front end of the curve anchored.",
		},
		worst: map[string]string{
			"loan_holder": "Variable-rate loan payments stay high for longer.",
			"saver":       "Deposit rates may start falling before you lock them in.",
		},
		tips: map[string]string{
			"loan_holder": "Compare fixed-rate refinancing offers now.",
			"saver":       "Consider locking a fixed deposit while rates are high.",
		},
	},
	{
		id:       "mock-kospi-chips",
		title:    "Chipmakers lead broad stock rally",
		source:   "Bloomberg",
		category: "stock",
		offset:   7 * time.Hour,
		blurred:  flag(false),
		levels: [3]string{
			"Shares of companies that make computer chips went up a lot today.",
			"Semiconductor stocks rallied on strong AI server demand, lifting the main index.",
			"Memory pricing upgrades drove a re-rating in semis; breadth was weak outside the sector.",
		},
		worst: map[string]string{
			"investor": "A sharp reversal if demand forecasts are cut.",
			"employee": "Stock-based pay in other sectors may lag.",
		},
		tips: map[string]string{
			"investor": "Rebalance if chips now dominate your portfolio.",
		},
	},
	{
		id:       "mock-btc-etf",
		title:    "Bitcoin ETF inflows hit monthly high",
		source:   "CoinDesk",
		category: "crypto",
		offset:   5 * time.Hour,
		levels: [3]string{
			"More people bought bitcoin through funds traded on the stock market.",
			"Spot bitcoin ETFs recorded their largest inflows this month as institutions added exposure.",
			"Net creations across spot ETFs outpaced miner issuance, tightening float on exchanges.",
		},
		worst: map[string]string{
			"investor": "A sudden outflow wave could push prices down quickly.",
			"student":  "Small savings can shrink fast in a crypto drawdown.",
		},
		tips: map[string]string{
			"investor": "Size crypto positions so a 50% drop is bearable.",
			"student":  "Keep an emergency fund outside crypto.",
		},
	},
	{
		id:       "mock-housing-loans",
		title:    "Mortgage lending tightens as home prices climb",
		source:   "Financial Times",
		category: "real_estate",
		offset:   3 * time.Hour,
		blurred:  flag(true),
		levels: [3]string{
			"Banks are making it harder to borrow money for buying a home.",
			"Regulators capped loan-to-value ratios as apartment prices rose for a fifth month.",
			"Macroprudential LTV and DSR limits were tightened; expect slower transaction volume.",
		},
		worst: map[string]string{
			"homeowner":   "Refinancing options may shrink.",
			"loan_holder": "Debt service ratio limits may block new borrowing.",
		},
		tips: map[string]string{
			"homeowner":   "Check your refinancing eligibility before rules tighten further.",
			"loan_holder": "Pay down short-term debt to keep your DSR low.",
		},
	},
	{
		id:       "mock-won-dollar",
		title:    "Dollar strengthens against Asian currencies",
		source:   "Nikkei",
		category: "fx",
		offset:   2 * time.Hour,
		blurred:  flag(false),
		levels: [3]string{
			"One dollar now buys more of other currencies, so trips abroad cost more.",
			"The dollar rose against regional currencies on higher US yields.",
			"Yield differentials widened and importers bought dollars, pressuring Asian FX.",
		},
		worst: map[string]string{
			"business_owner": "Imported materials get more expensive.",
			"student":        "Tuition paid abroad becomes costlier.",
		},
		tips: map[string]string{
			"business_owner": "Hedge part of next quarter's dollar payments.",
		},
	},
	{
		id:       "mock-oil-supply",
		title:    "Oil rises after output cut extension",
		source:   "Reuters",
		category: "commodity",
		offset:   time.Hour,
		levels: [3]string{
			"Oil got more expensive because producers will keep pumping less.",
			"Crude prices rose after producers extended supply cuts into next quarter.",
			"The cut extension tightens balances into winter; backwardation steepened.",
		},
		worst: map[string]string{
			"employee":       "Commuting and heating costs go up.",
			"business_owner": "Logistics costs rise.",
		},
		tips: map[string]string{
			"employee": "Budget for higher fuel costs this winter.",
		},
	},
	{
		id:       "mock-earnings-season",
		title:    "Earnings season opens with banks beating forecasts",
		source:   "Wall Street Journal",
		category: "stock",
		offset:   -6 * 24 * time.Hour,
		blurred:  flag(true),
		levels: [3]string{
			"Big banks made more money than expected.",
			"Large banks reported profits above estimates on trading and interest income.",
			"Net interest margin held up better than guided; provisioning remained light.",
		},
		worst: map[string]string{
			"investor": "Bank stocks could fall if loan losses rise later.",
		},
		tips: map[string]string{
			"investor": "Watch credit-loss provisions in the next quarter.",
		},
	},
	{
		id:       "mock-gold-record",
		title:    "Gold sets a new record high",
		source:   "Bloomberg",
		category: "commodity",
		offset:   -12 * 24 * time.Hour,
		blurred:  flag(false),
		levels: [3]string{
			"The price of gold is the highest it has ever been.",
			"Gold hit a record as central banks kept buying and real yields eased.",
			"Official sector demand and falling real yields pushed bullion to new highs.",
		},
		worst: map[string]string{
			"saver": "Buying at a record high risks a sharp pullback.",
		},
		tips: map[string]string{
			"saver": "Spread gold purchases over time instead of buying at once.",
		},
	},
}

// Default builds the built-in fixture set with publication times relative to
// the UTC day containing now. The set only covers that day; DailyRepository
// rebuilds it as days pass.
func Default(now time.Time) []models.NewsArticle {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := make([]models.NewsArticle, 0, len(builtin))
	for _, e := range builtin {
		out = append(out, e.article(day))
	}
	return out
}

func (e entry) article(day time.Time) models.NewsArticle {
	analyses := make(map[models.Level]models.AnalysisContent, len(e.levels))
	for i, content := range e.levels {
		level := models.Level(i + 1)
		a := models.AnalysisContent{
			Title:                  e.title,
			Content:                content,
			WorstScenarioByContext: e.worst,
			ActionTipByContext:     e.tips,
		}
		if e.blurred != nil {
			b := *e.blurred
			a.ActionBlurred = &b
		}
		analyses[level] = a
	}

	return models.NewsArticle{
		ID:              e.id,
		Title:           e.title,
		URL:             "https://news.example.com/" + e.id,
		PublishedAt:     day.Add(e.offset),
		SourceName:      e.source,
		Category:        e.category,
		AnalysisByLevel: analyses,
	}
}
