package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultSiteYAML []byte

// ErrContentInvalid 站点内容校验失败
var ErrContentInvalid = errors.New("site content invalid")

// DefaultPlaceholderImage 非生产环境统一使用的占位图
const DefaultPlaceholderImage = "https://placehold.co/600x400/064e3b/ffffff?text=Coming+Soon"

// Site 站点内容
type Site struct {
	Brand       Brand     `yaml:"brand"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Keywords    []string  `yaml:"keywords"`
	Nav         []Link    `yaml:"nav"`
	Sections    []Section `yaml:"sections"`
	Footer      Footer    `yaml:"footer"`

	production  bool
	placeholder string
}

// Brand 品牌信息
type Brand struct {
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`
}

// Link 导航或页脚链接
type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// LinkGroup 页脚链接分组
type LinkGroup struct {
	Title string `yaml:"title"`
	Links []Link `yaml:"links"`
}

// Social 社交账号链接
type Social struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Footer 页脚
type Footer struct {
	Tagline string      `yaml:"tagline"`
	Groups  []LinkGroup `yaml:"groups"`
	Socials []Social    `yaml:"socials"`
	Legal   []Link      `yaml:"legal"`
}

// Section 页面分区
type Section struct {
	ID       string  `yaml:"id"`
	Title    string  `yaml:"title"`
	Subtitle string  `yaml:"subtitle"`
	Enabled  bool    `yaml:"enabled"`
	CTA      *Link   `yaml:"cta,omitempty"`
	Blocks   []Block `yaml:"blocks"`
}

// Load 加载站点内容，path 为空时使用内置 site.yaml
func Load(path string) (*Site, error) {
	raw := defaultSiteYAML
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read site content: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

// Parse 解析并校验站点内容
func Parse(raw []byte) (*Site, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var site Site
	if err := dec.Decode(&site); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentInvalid, err)
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	site.placeholder = DefaultPlaceholderImage
	return &site, nil
}

// Validate 校验分区与内容块
func (s *Site) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	seen := make(map[string]struct{}, len(s.Sections))
	for i, section := range s.Sections {
		id := strings.TrimSpace(section.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("sections[%d]: id is required", i))
			continue
		}
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("sections[%d]: duplicate id %q", i, id))
		}
		seen[id] = struct{}{}
		for j, block := range section.Blocks {
			if err := block.validate(); err != nil {
				errs = append(errs, fmt.Errorf("sections[%s].blocks[%d]: %w", id, j, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrContentInvalid, errors.Join(errs...))
	}
	return nil
}

// ApplyImagePolicy 设置图片策略，非生产环境返回占位图
func (s *Site) ApplyImagePolicy(production bool, placeholder string) *Site {
	s.production = production
	if placeholder = strings.TrimSpace(placeholder); placeholder != "" {
		s.placeholder = placeholder
	}
	return s
}

// ImageURL 生产环境返回原路径，否则返回占位图
func (s *Site) ImageURL(path string) string {
	if s.production {
		return path
	}
	if s.placeholder == "" {
		return DefaultPlaceholderImage
	}
	return s.placeholder
}

// EnabledSections 返回启用的分区，保持原有顺序
func (s *Site) EnabledSections() []Section {
	out := make([]Section, 0, len(s.Sections))
	for _, section := range s.Sections {
		if section.Enabled {
			out = append(out, section)
		}
	}
	return out
}

// Section 按 id 查找分区
func (s *Site) Section(id string) (Section, bool) {
	for _, section := range s.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}
