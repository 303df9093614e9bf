package engine

import "ironbook/internal/common"

// Registry routes commands to the right single-instrument Book by asset
// class and ticker, the way a real venue fans incoming order flow out to
// one matching engine per listed instrument.
type Registry struct {
	opts  Options
	books map[common.AssetType]map[string]*Book
}

// NewRegistry builds an empty registry. Books are created lazily on first
// use via Book, using opts as the template for every instrument.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:  opts,
		books: make(map[common.AssetType]map[string]*Book),
	}
}

// Book returns the order book for (assetType, ticker), creating it on
// first reference.
func (r *Registry) Book(assetType common.AssetType, ticker string) *Book {
	tickers, ok := r.books[assetType]
	if !ok {
		tickers = make(map[string]*Book)
		r.books[assetType] = tickers
	}
	book, ok := tickers[ticker]
	if !ok {
		book = NewBook(r.opts)
		tickers[ticker] = book
	}
	return book
}

// Execute routes order to its book and executes cmd against it.
func (r *Registry) Execute(assetType common.AssetType, ticker string, cmd Command) Event {
	return r.Book(assetType, ticker).Execute(cmd)
}
