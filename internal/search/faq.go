package search

import (
	"context"
	"strings"
	"time"

	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/ranking"
)

// faqPublished is the timestamp reported for every FAQ entry.
var faqPublished = time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC)

// FAQSource searches a fixed bilingual FAQ list. The locale picks the language
// that is both scored and returned.
type FAQSource struct {
	items  []*models.FAQItem
	boosts ranking.Boosts
}

// NewFAQSource returns a source over items. A nil items uses DefaultFAQ.
func NewFAQSource(items []*models.FAQItem, boosts *ranking.Boosts) *FAQSource {
	if items == nil {
		items = DefaultFAQ()
	}
	return &FAQSource{items: items, boosts: resolveBoosts(boosts)}
}

func (s *FAQSource) Type() models.ResultType { return models.TypeFAQ }

func (s *FAQSource) Search(_ context.Context, query, locale string) ([]*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	results := []*models.SearchResult{}
	if query == "" {
		return results, nil
	}
	b := s.boosts
	for _, item := range s.items {
		question := item.Question.Resolve(locale)
		answer := item.Answer.Resolve(locale)
		score := ranking.NewFieldScorer(query).
			Add(question, b.Question).
			Add(answer, b.Answer).
			AddEach(item.Tags, b.Tag).
			Total()
		if score <= 0 {
			continue
		}
		results = append(results, &models.SearchResult{
			ID:          item.ID,
			Title:       question,
			Description: answer,
			URL:         localizedPath(locale, "/faq") + "#" + item.ID,
			Type:        models.TypeFAQ,
			Category:    item.Category,
			Tags:        copyTags(item.Tags),
			CreatedAt:   faqPublished,
			Score:       score,
		})
	}
	return results, nil
}

// DefaultFAQ returns the built-in FAQ entries.
func DefaultFAQ() []*models.FAQItem {
	return []*models.FAQItem{
		{
			ID: "what-is-gemini-cli",
			Question: models.BilingualText{
				En: "What is Gemini CLI?",
				Zh: "什么是 Gemini CLI？",
			},
			Answer: models.BilingualText{
				En: "Gemini CLI is an open source AI agent that brings Gemini models directly into your terminal for coding, research and task automation.",
				Zh: "Gemini CLI 是一个开源 AI 代理，将 Gemini 模型直接带入终端，用于编程、研究和任务自动化。",
			},
			Category: "general",
			Tags:     []string{"gemini", "cli", "introduction"},
		},
		{
			ID: "how-to-install",
			Question: models.BilingualText{
				En: "How do I install Gemini CLI?",
				Zh: "如何安装 Gemini CLI？",
			},
			Answer: models.BilingualText{
				En: "Install it globally with npm install -g @google/gemini-cli or run it once with npx. Node.js 20 or newer is required.",
				Zh: "使用 npm install -g @google/gemini-cli 全局安装，或通过 npx 直接运行。需要 Node.js 20 或更高版本。",
			},
			Category: "installation",
			Tags:     []string{"installation", "npm", "setup"},
		},
		{
			ID: "is-it-free",
			Question: models.BilingualText{
				En: "Is Gemini CLI free to use?",
				Zh: "Gemini CLI 是免费的吗？",
			},
			Answer: models.BilingualText{
				En: "Signing in with a personal Google account gives a free tier with generous daily request limits. Higher limits are available with an API key or Vertex AI.",
				Zh: "使用个人 Google 账号登录即可获得免费额度，每日请求限额较高。使用 API 密钥或 Vertex AI 可获得更高限额。",
			},
			Category: "pricing",
			Tags:     []string{"free", "quota", "api key"},
		},
		{
			ID: "api-key-setup",
			Question: models.BilingualText{
				En: "How do I use my own API key?",
				Zh: "如何使用自己的 API 密钥？",
			},
			Answer: models.BilingualText{
				En: "Create a key in Google AI Studio and export it as GEMINI_API_KEY before starting the CLI.",
				Zh: "在 Google AI Studio 中创建密钥，并在启动 CLI 前将其导出为 GEMINI_API_KEY 环境变量。",
			},
			Category: "configuration",
			Tags:     []string{"api key", "authentication", "configuration"},
		},
		{
			ID: "mcp-servers",
			Question: models.BilingualText{
				En: "Does Gemini CLI support MCP servers?",
				Zh: "Gemini CLI 支持 MCP 服务器吗？",
			},
			Answer: models.BilingualText{
				En: "Yes. Add Model Context Protocol servers to settings.json to give the agent extra tools and data sources.",
				Zh: "支持。在 settings.json 中添加模型上下文协议 (MCP) 服务器，即可为代理提供更多工具和数据源。",
			},
			Category: "extensions",
			Tags:     []string{"mcp", "extensions", "tools"},
		},
		{
			ID: "gemini-md",
			Question: models.BilingualText{
				En: "What is the GEMINI.md file?",
				Zh: "GEMINI.md 文件是什么？",
			},
			Answer: models.BilingualText{
				En: "GEMINI.md holds project instructions and context that the CLI loads automatically into every session.",
				Zh: "GEMINI.md 用于存放项目说明和上下文，CLI 会在每次会话中自动加载。",
			},
			Category: "configuration",
			Tags:     []string{"context", "memory", "configuration"},
		},
		{
			ID: "sandbox",
			Question: models.BilingualText{
				En: "Can Gemini CLI run commands safely?",
				Zh: "Gemini CLI 能安全地执行命令吗？",
			},
			Answer: models.BilingualText{
				En: "Shell commands and file edits ask for confirmation by default, and sandbox mode runs tools inside a container or seatbelt profile.",
				Zh: "默认情况下，执行 shell 命令和编辑文件前都会请求确认；沙箱模式会在容器或 seatbelt 配置中运行工具。",
			},
			Category: "security",
			Tags:     []string{"sandbox", "security", "shell"},
		},
		{
			ID: "supported-platforms",
			Question: models.BilingualText{
				En: "Which operating systems are supported?",
				Zh: "支持哪些操作系统？",
			},
			Answer: models.BilingualText{
				En: "Gemini CLI runs on macOS, Linux and Windows wherever a supported Node.js runtime is available.",
				Zh: "只要有受支持的 Node.js 运行环境，Gemini CLI 即可在 macOS、Linux 和 Windows 上运行。",
			},
			Category: "installation",
			Tags:     []string{"macos", "linux", "windows"},
		},
	}
}
