package views

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"devdash/internal/analytics"
	"devdash/internal/tui/api"
	"devdash/internal/tui/components"
	"devdash/internal/tui/styles"
	"devdash/pkg/models"
)

var videoSortOrder = []string{
	analytics.SortVideosByViews,
	analytics.SortVideosByApprovals,
	analytics.SortVideosByEngagement,
}

// VideosModel lists videos with search and sort, and shows one video in detail
type VideosModel struct {
	apiClient *api.Client

	videos   []models.VideoWithEngagements
	cursor   int
	sortIdx  int
	search   textinput.Model
	query    string
	pageSize int

	detail  *models.VideoDetail
	loading bool
	spinner components.Spinner
	err     error
}

// VideosLoadedMsg is sent when the video list arrives
type VideosLoadedMsg struct {
	Videos []models.VideoWithEngagements
}

// VideoDetailLoadedMsg is sent when a single video arrives
type VideoDetailLoadedMsg struct {
	Video *models.VideoDetail
}

// VideosErrorMsg is sent on video list or detail errors
type VideosErrorMsg struct{ Err error }

// NewVideosModel creates the video list view
func NewVideosModel(apiClient *api.Client, pageSize int) VideosModel {
	search := textinput.New()
	search.Placeholder = "Search by title or id"
	search.CharLimit = 100
	search.Width = 40
	if pageSize <= 0 {
		pageSize = 15
	}
	return VideosModel{
		apiClient: apiClient,
		search:    search,
		pageSize:  pageSize,
		loading:   true,
		spinner:   components.NewSpinner("Loading videos..."),
	}
}

func (m VideosModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// Typing reports whether the search box has focus
func (m VideosModel) Typing() bool { return m.search.Focused() }

// SortBy returns the active sort key
func (m VideosModel) SortBy() string { return videoSortOrder[m.sortIdx] }

func (m VideosModel) Update(msg tea.Msg) (VideosModel, tea.Cmd) {
	switch msg := msg.(type) {
	case VideosLoadedMsg:
		m.loading = false
		m.err = nil
		m.videos = msg.Videos
		m.cursor = clamp(m.cursor, 0, len(m.videos)-1)
		return m, nil

	case VideoDetailLoadedMsg:
		m.loading = false
		m.err = nil
		m.detail = msg.Video
		return m, nil

	case VideosErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		if m.detail != nil {
			if msg.String() == "esc" || msg.String() == "backspace" {
				m.detail = nil
			}
			return m, nil
		}
		return m.updateList(msg)
	}

	if m.loading {
		return m, m.spinner.Update(msg)
	}
	return m, nil
}

func (m VideosModel) updateSearch(msg tea.KeyMsg) (VideosModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.query = strings.TrimSpace(m.search.Value())
		m.loading = true
		m.cursor = 0
		return m, m.load()
	case tea.KeyEsc:
		m.search.Blur()
		m.search.SetValue(m.query)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m VideosModel) updateList(msg tea.KeyMsg) (VideosModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, len(m.videos)-1)
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, len(m.videos)-1)
	case "/":
		m.search.Focus()
		return m, textinput.Blink
	case "s":
		m.sortIdx = (m.sortIdx + 1) % len(videoSortOrder)
		m.loading = true
		return m, m.load()
	case "r":
		m.loading = true
		return m, m.load()
	case "enter":
		if len(m.videos) == 0 {
			return m, nil
		}
		m.loading = true
		return m, m.loadDetail(m.videos[m.cursor].VideoID)
	}
	return m, nil
}

func (m VideosModel) View() string {
	if m.detail != nil {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Videos"))
	b.WriteString("  ")
	b.WriteString(styles.BadgeMutedStyle.Render("sort: " + m.SortBy()))
	if m.query != "" {
		b.WriteString(" ")
		b.WriteString(styles.BadgeMutedStyle.Render("q: " + m.query))
	}
	b.WriteString("\n\n")

	if m.search.Focused() {
		b.WriteString(styles.InputFocusedStyle.Render(m.search.View()))
		b.WriteString("\n\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(components.ErrorView(m.err))
		return b.String()
	case m.loading && m.videos == nil:
		b.WriteString(m.spinner.View())
		return b.String()
	case len(m.videos) == 0:
		b.WriteString(styles.HelpStyle.Render("No videos match"))
		b.WriteString("\n")
	}

	if len(m.videos) > 0 {
		header := fmt.Sprintf("  %s %7s %9s %8s %8s", styles.Pad("Title", 42), "Views", "Approvals", "Concerns", "Engaged")
		b.WriteString(styles.TableHeaderStyle.Render(header))
		b.WriteString("\n")
	}

	start, end := window(m.cursor, len(m.videos), m.pageSize)
	for i := start; i < end; i++ {
		v := m.videos[i]
		name := v.VideoName
		if name == "" {
			name = v.VideoID
		}
		line := fmt.Sprintf("%s %7d %9d %8d %7.1f%%",
			styles.Pad(name, 42), v.TotalViews, v.TotalApprovals, v.TotalDisapprovals, v.EngagementRate)
		if i == m.cursor {
			b.WriteString(styles.ListItemSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(styles.ListItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓ move • enter details • / search • s sort • r refresh"))
	return b.String()
}

func (m VideosModel) detailView() string {
	v := m.detail
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(v.VideoName))
	b.WriteString("\n\n")
	b.WriteString(styles.RenderKeyValue("Video ID", v.VideoID))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Category", v.Category))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Age group", v.AgeCategory))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Views", fmt.Sprintf("%d (%d unique viewers)", v.TotalViews, v.UniqueViewers)))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Approvals", fmt.Sprintf("%d", v.TotalApprovals)))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Concerns", fmt.Sprintf("%d", v.TotalDisapprovals)))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Engagement", fmt.Sprintf("%.1f%%", v.EngagementRate)))
	b.WriteString("  ")
	b.WriteString(styles.RenderPercentBar(v.EngagementRate, 20))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Views per parent", fmt.Sprintf("%.1f", v.AverageViewsPerUser)))
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Viewers"))
	b.WriteString("\n")
	engs := append([]models.VideoEngagement(nil), v.Engagements...)
	sort.SliceStable(engs, func(i, j int) bool { return engs[i].LastViewed.After(engs[j].LastViewed) })
	if len(engs) == 0 {
		b.WriteString(styles.HelpStyle.Render("  Nobody has watched this video yet"))
		b.WriteString("\n")
	}
	for _, e := range engs {
		name := v.ViewerNames[e.UserID]
		if name == "" {
			name = analytics.UnknownUser
		}
		line := fmt.Sprintf("%s %3d views  %s  %s",
			styles.Pad(name, 24), e.ViewCount, voteBadge(e.Vote),
			styles.TimestampStyle.Render(e.LastViewed.Local().Format("Jan 2 15:04")))
		b.WriteString(styles.ListItemStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("esc back"))
	return b.String()
}

func voteBadge(v models.Vote) string {
	switch v {
	case models.VoteApprove:
		return styles.BadgeSuccessStyle.Render("approved")
	case models.VoteDisapprove:
		return styles.BadgeDangerStyle.Render("concern")
	default:
		return styles.BadgeMutedStyle.Render("no vote")
	}
}

// window returns the visible slice bounds keeping cursor on screen
func window(cursor, total, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}

func (m VideosModel) load() tea.Cmd {
	client, query, sortBy := m.apiClient, m.query, m.SortBy()
	return fetch(func(ctx context.Context) tea.Msg {
		videos, err := client.Videos(ctx, query, sortBy)
		if err != nil {
			return errMsg{err}
		}
		if videos == nil {
			videos = []models.VideoWithEngagements{}
		}
		return VideosLoadedMsg{Videos: videos}
	}, func(err error) tea.Msg { return VideosErrorMsg{Err: err} })
}

func (m VideosModel) loadDetail(id string) tea.Cmd {
	client := m.apiClient
	return fetch(func(ctx context.Context) tea.Msg {
		video, err := client.Video(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return VideoDetailLoadedMsg{Video: video}
	}, func(err error) tea.Msg { return VideosErrorMsg{Err: err} })
}
