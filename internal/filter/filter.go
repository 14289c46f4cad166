package filter

import (
	"sync"
	"unicode"
)

// DefaultWords 是进程启动时的默认敏感词表，首次启动会写入数据库
var DefaultWords = []string{
	"赌博",
	"色情",
	"暴力",
	"诈骗",
	"办证",
	"代开发票",
	"枪支",
	"毒品",
}

// Filter 维护一个大小写不敏感的敏感词集合
// 匹配用的是纯子串扫描而不是正则，词里带正则元字符（如 c++、f*ck）也不会出问题，
// 并且打码长度严格等于命中词的字符数
type Filter struct {
	mu    sync.RWMutex
	words map[string]struct{} // key是逐字符小写后的词
}

func New(words ...string) *Filter {
	f := &Filter{words: make(map[string]struct{})}
	f.AddAll(words)
	return f
}

// Add 添加一个词，空串直接忽略
func (f *Filter) Add(word string) {
	key := foldString(word)
	if key == "" {
		return
	}
	f.mu.Lock()
	f.words[key] = struct{}{}
	f.mu.Unlock()
}

func (f *Filter) AddAll(words []string) {
	for _, w := range words {
		f.Add(w)
	}
}

func (f *Filter) Remove(word string) {
	f.mu.Lock()
	delete(f.words, foldString(word))
	f.mu.Unlock()
}

// Replace 用一份新词表整体替换，给重载配置用
func (f *Filter) Replace(words []string) {
	next := make(map[string]struct{}, len(words))
	for _, w := range words {
		if key := foldString(w); key != "" {
			next[key] = struct{}{}
		}
	}
	f.mu.Lock()
	f.words = next
	f.mu.Unlock()
}

func (f *Filter) Words() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.words))
	for w := range f.words {
		out = append(out, w)
	}
	return out
}

// Contains 判断文本里是否出现任一敏感词（大小写不敏感的子串匹配）
// 空文本或空词表一律返回false，任何输入都不会报错
func (f *Filter) Contains(text string) bool {
	if text == "" {
		return false
	}
	lower := foldRunes([]rune(text))

	f.mu.RLock()
	defer f.mu.RUnlock()
	for w := range f.words {
		if indexRunes(lower, []rune(w), 0) >= 0 {
			return true
		}
	}
	return false
}

// Mask 把每个敏感词的每次出现替换成等长的'*'串，逐词依次处理
// 按rune计长，两个汉字的词打出两个星号；空文本原样返回
func (f *Filter) Mask(text string) string {
	if text == "" {
		return text
	}
	runes := []rune(text)
	lower := foldRunes(runes)

	f.mu.RLock()
	defer f.mu.RUnlock()
	masked := false
	for w := range f.words {
		wr := []rune(w)
		for i := 0; ; {
			hit := indexRunes(lower, wr, i)
			if hit < 0 {
				break
			}
			for j := hit; j < hit+len(wr); j++ {
				runes[j] = '*'
				lower[j] = '*' // 同步打码，避免已替换区段被反复命中
			}
			masked = true
			i = hit + len(wr)
		}
	}
	if !masked {
		return text
	}
	return string(runes)
}

// foldRunes 逐rune小写，保证输出和输入等长（strings.ToLower对个别字符会变长）
func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func foldString(s string) string {
	return string(foldRunes([]rune(s)))
}

// indexRunes 在haystack[from:]中找needle，返回绝对下标，找不到返回-1
func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		ok := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}
