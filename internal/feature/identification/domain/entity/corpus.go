package entity

// Reference は参照画像1枚分の記述子集合です。IDはファイル名から拡張子を除いたものです。
type Reference struct {
	ID          string
	Descriptors []Descriptor
}

// Corpus は参照画像の不変なスナップショットです。
// 並び順はファイル名の辞書順で、同点時の優先順位を決めます。
type Corpus struct {
	refs []Reference
}

// NewCorpus はrefsをコピーして新しいスナップショットを作成します。
func NewCorpus(refs []Reference) *Corpus {
	c := &Corpus{refs: make([]Reference, len(refs))}
	copy(c.refs, refs)
	return c
}

// Len は参照数を返します。nilのCorpusは空として扱います。
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.refs)
}

// At はi番目の参照を返します。
func (c *Corpus) At(i int) Reference {
	return c.refs[i]
}

// IDs は参照IDを並び順どおりに返します。
func (c *Corpus) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.refs))
	for i, r := range c.refs {
		ids[i] = r.ID
	}
	return ids
}
