package tools

import (
	"context"
	"encoding/json"
	"time"

	startupsModel "github.com/andreypavlenko/scout/modules/startups/model"
	startupsService "github.com/andreypavlenko/scout/modules/startups/service"
)

const defaultLimit = 10

// limitSchemaFragment is shared by every list tool: int, max 50, default 10.
const limitSchemaFragment = `"limit": {"type": "integer", "minimum": 1, "maximum": 50, "default": 10}`

// NewCorpusRegistry declares the seven read tools over the corpus snapshot.
func NewCorpusRegistry(corpus *startupsService.StartupService, timeout time.Duration) *Registry {
	r := NewRegistry(timeout)

	r.Register(
		"search_startups_by_name",
		"Search startups whose name contains the query, case-insensitive.",
		`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "minLength": 1},
				`+limitSchemaFragment+`
			},
			"required": ["query"],
			"additionalProperties": false
		}`,
		func(ctx context.Context, raw json.RawMessage) *Result {
			var args struct {
				Query string `json:"query"`
				Limit int    `json:"limit"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return failure("malformed arguments")
			}

			page, _ := corpus.Snapshot().Search(&startupsModel.ListFilter{NameSubstring: args.Query}, 0, limitOrDefault(args.Limit))
			return success(projections(page), len(page))
		},
	)

	r.Register(
		"search_startups_by_industry",
		"Search startups by industry label, matching primary and secondary industries.",
		`{
			"type": "object",
			"properties": {
				"industry": {"type": "string", "minLength": 1},
				`+limitSchemaFragment+`
			},
			"required": ["industry"],
			"additionalProperties": false
		}`,
		func(ctx context.Context, raw json.RawMessage) *Result {
			var args struct {
				Industry string `json:"industry"`
				Limit    int    `json:"limit"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return failure("malformed arguments")
			}

			page, _ := corpus.Snapshot().Search(&startupsModel.ListFilter{Industry: args.Industry}, 0, limitOrDefault(args.Limit))
			return success(projections(page), len(page))
		},
	)

	r.Register(
		"search_startups_by_funding",
		"Search startups by investment stage and minimum total funding in USD millions.",
		`{
			"type": "object",
			"properties": {
				"stage": {"type": "string"},
				"min_funding": {"type": "number", "minimum": 0},
				`+limitSchemaFragment+`
			},
			"additionalProperties": false
		}`,
		func(ctx context.Context, raw json.RawMessage) *Result {
			var args struct {
				Stage      string  `json:"stage"`
				MinFunding float64 `json:"min_funding"`
				Limit      int     `json:"limit"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return failure("malformed arguments")
			}

			filter := &startupsModel.ListFilter{MinFundingUSD: args.MinFunding}
			if args.Stage != "" {
				filter.Stage = startupsModel.ParseStage(args.Stage)
			}

			page, _ := corpus.Snapshot().Search(filter, 0, limitOrDefault(args.Limit))
			return success(projections(page), len(page))
		},
	)

	r.Register(
		"search_startups_by_location",
		"Search startups by country and optionally city.",
		`{
			"type": "object",
			"properties": {
				"country": {"type": "string", "minLength": 1},
				"city": {"type": "string"},
				`+limitSchemaFragment+`
			},
			"required": ["country"],
			"additionalProperties": false
		}`,
		func(ctx context.Context, raw json.RawMessage) *Result {
			var args struct {
				Country string `json:"country"`
				City    string `json:"city"`
				Limit   int    `json:"limit"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return failure("malformed arguments")
			}

			page, _ := corpus.Snapshot().Search(&startupsModel.ListFilter{
				Country: args.Country,
				City:    args.City,
			}, 0, limitOrDefault(args.Limit))
			return success(projections(page), len(page))
		},
	)

	r.Register(
		"get_startup_details",
		"Get the full record of one startup by id or by company name.",
		detailsSchema,
		func(ctx context.Context, raw json.RawMessage) *Result {
			startup, errMsg := resolveStartup(corpus, raw)
			if errMsg != "" {
				return failure(errMsg)
			}
			return success(startup.ToDTO(), 1)
		},
	)

	r.Register(
		"get_startup_enrichment_data",
		"Get the enrichment object (contacts, social links, team) of one startup by id or name.",
		detailsSchema,
		func(ctx context.Context, raw json.RawMessage) *Result {
			startup, errMsg := resolveStartup(corpus, raw)
			if errMsg != "" {
				return failure(errMsg)
			}
			if len(startup.Enrichment) == 0 {
				return failure("no enrichment data for this startup")
			}
			return success(startup.Enrichment, 1)
		},
	)

	r.Register(
		"get_top_startups_by_funding",
		"Get the top startups ranked by total funding.",
		`{
			"type": "object",
			"properties": {
				`+limitSchemaFragment+`
			},
			"additionalProperties": false
		}`,
		func(ctx context.Context, raw json.RawMessage) *Result {
			var args struct {
				Limit int `json:"limit"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return failure("malformed arguments")
			}

			top := corpus.Snapshot().TopByFunding(limitOrDefault(args.Limit))
			return success(projections(top), len(top))
		},
	)

	return r
}

// detailsSchema accepts startup_id or company_name, exactly one of them.
const detailsSchema = `{
	"type": "object",
	"properties": {
		"startup_id": {"type": "integer"},
		"company_name": {"type": "string", "minLength": 1}
	},
	"oneOf": [
		{"required": ["startup_id"]},
		{"required": ["company_name"]}
	],
	"additionalProperties": false
}`

func resolveStartup(corpus *startupsService.StartupService, raw json.RawMessage) (*startupsModel.Startup, string) {
	var args struct {
		StartupID   *int64 `json:"startup_id"`
		CompanyName string `json:"company_name"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, "malformed arguments"
	}

	if args.StartupID != nil {
		startup, err := corpus.GetStartup(*args.StartupID)
		if err != nil {
			return nil, "startup not found"
		}
		return startup, ""
	}

	startup, err := corpus.GetStartupByName(args.CompanyName)
	if err != nil {
		return nil, "startup not found"
	}
	return startup, ""
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > 50 {
		return 50
	}
	return limit
}

func projections(startups []*startupsModel.Startup) []map[string]any {
	out := make([]map[string]any, 0, len(startups))
	for _, s := range startups {
		out = append(out, s.Projection())
	}
	return out
}
