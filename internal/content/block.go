package content

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// BlockKind 内容块类型
type BlockKind string

const (
	KindHero        BlockKind = "hero"
	KindStatCard    BlockKind = "stat_card"
	KindProblem     BlockKind = "problem"
	KindService     BlockKind = "service"
	KindPost        BlockKind = "post"
	KindEpisode     BlockKind = "episode"
	KindTestimonial BlockKind = "testimonial"
)

// Icon 图标枚举，对应 static/icons.svg 中的 symbol id
type Icon string

var knownIcons = map[Icon]struct{}{
	"shield": {}, "shield_alert": {}, "lock": {}, "server": {}, "terminal": {},
	"activity": {}, "wifi": {}, "alert_triangle": {}, "cloud": {}, "user_x": {},
	"laptop": {}, "building": {}, "dollar_sign": {}, "layers": {},
}

// BlockData 内容块负载
type BlockData interface {
	Kind() BlockKind
	validate() error
}

// Block 带类型标签的内容块
type Block struct {
	Kind BlockKind
	Data BlockData
}

// UnmarshalYAML 按 kind 解码到对应负载
func (b *Block) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Kind BlockKind `yaml:"kind"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	var data BlockData
	switch head.Kind {
	case KindHero:
		data = &Hero{}
	case KindStatCard:
		data = &StatCard{}
	case KindProblem:
		data = &Problem{}
	case KindService:
		data = &Service{}
	case KindPost:
		data = &Post{}
	case KindEpisode:
		data = &Episode{}
	case KindTestimonial:
		data = &Testimonial{}
	default:
		return fmt.Errorf("unknown block kind %q", head.Kind)
	}
	if err := node.Decode(data); err != nil {
		return err
	}
	b.Kind = head.Kind
	b.Data = data
	return nil
}

func (b Block) validate() error {
	if b.Data == nil {
		return errors.New("block has no data")
	}
	if b.Data.Kind() != b.Kind {
		return fmt.Errorf("block kind %q does not match payload %q", b.Kind, b.Data.Kind())
	}
	return b.Data.validate()
}

func validateIcon(icon Icon) error {
	if icon == "" {
		return nil
	}
	if _, ok := knownIcons[icon]; !ok {
		return fmt.Errorf("unknown icon %q", icon)
	}
	return nil
}

func requireText(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Stat 统计项
type Stat struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Hero 首屏
type Hero struct {
	Badge         string   `yaml:"badge"`
	Heading       string   `yaml:"heading"`
	HeadingAccent string   `yaml:"heading_accent"`
	Lead          string   `yaml:"lead"`
	Ticker        []string `yaml:"ticker"`
	CTA           *Link    `yaml:"cta,omitempty"`
}

func (h *Hero) Kind() BlockKind { return KindHero }
func (h *Hero) validate() error { return requireText("heading", h.Heading) }

// StatCard 安全意识卡片
type StatCard struct {
	Icon        Icon   `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Stats       []Stat `yaml:"stats"`
}

func (s *StatCard) Kind() BlockKind { return KindStatCard }
func (s *StatCard) validate() error {
	return errors.Join(validateIcon(s.Icon), requireText("title", s.Title))
}

// Problem 安全挑战
type Problem struct {
	Icon        Icon   `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Impact      string `yaml:"impact"`
	Solution    string `yaml:"solution"`
	Image       string `yaml:"image"`
	ImageAlt    string `yaml:"image_alt"`
}

func (p *Problem) Kind() BlockKind { return KindProblem }
func (p *Problem) validate() error {
	return errors.Join(validateIcon(p.Icon), requireText("title", p.Title))
}

// Service 服务项
type Service struct {
	Icon        Icon     `yaml:"icon"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
	Image       string   `yaml:"image"`
}

func (s *Service) Kind() BlockKind { return KindService }
func (s *Service) validate() error {
	return errors.Join(validateIcon(s.Icon), requireText("title", s.Title))
}

// Post 博客文章摘要
type Post struct {
	Title    string `yaml:"title"`
	Excerpt  string `yaml:"excerpt"`
	Image    string `yaml:"image"`
	Author   string `yaml:"author"`
	Date     string `yaml:"date"`
	ReadTime string `yaml:"read_time"`
	Category string `yaml:"category"`
	Href     string `yaml:"href"`
}

func (p *Post) Kind() BlockKind { return KindPost }
func (p *Post) validate() error { return requireText("title", p.Title) }

// Comment 节目评论
type Comment struct {
	User      string `yaml:"user"`
	Avatar    string `yaml:"avatar"`
	Text      string `yaml:"text"`
	Timestamp string `yaml:"timestamp"`
	Likes     int    `yaml:"likes"`
}

// Episode 播客节目
type Episode struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	VideoURL    string    `yaml:"video_url"`
	Thumbnail   string    `yaml:"thumbnail"`
	Duration    string    `yaml:"duration"`
	Host        string    `yaml:"host"`
	Views       string    `yaml:"views"`
	Likes       int       `yaml:"likes"`
	Comments    []Comment `yaml:"comments"`
}

func (e *Episode) Kind() BlockKind { return KindEpisode }
func (e *Episode) validate() error { return requireText("title", e.Title) }

// Testimonial 客户评价
type Testimonial struct {
	Name    string `yaml:"name"`
	Role    string `yaml:"role"`
	Company string `yaml:"company"`
	Avatar  string `yaml:"avatar"`
	Content string `yaml:"content"`
	Rating  int    `yaml:"rating"`
}

func (t *Testimonial) Kind() BlockKind { return KindTestimonial }
func (t *Testimonial) validate() error {
	if t.Rating < 1 || t.Rating > 5 {
		return fmt.Errorf("rating %d out of range 1..5", t.Rating)
	}
	return requireText("name", t.Name)
}
