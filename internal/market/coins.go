package market

// Coin pairs the name shown in the coin selector with the CoinGecko id.
type Coin struct {
	Name string
	ID   string
}

// Coins is the fixed selector list, in display order.
var Coins = []Coin{
	{Name: "Bitcoin", ID: "bitcoin"},
	{Name: "Ethereum", ID: "ethereum"},
	{Name: "Cardano", ID: "cardano"},
	{Name: "Solana", ID: "solana"},
	{Name: "Dogecoin", ID: "dogecoin"},
	{Name: "Polkadot", ID: "polkadot"},
	{Name: "Avalanche", ID: "avalanche-2"},
	{Name: "XRP", ID: "ripple"},
	{Name: "Litecoin", ID: "litecoin"},
	{Name: "Binance Coin", ID: "binancecoin"},
	{Name: "Polygon", ID: "matic-network"},
	{Name: "Chainlink", ID: "chainlink"},
	{Name: "Uniswap", ID: "uniswap"},
	{Name: "Shiba Inu", ID: "shiba-inu"},
}

func LookupCoin(name string) (Coin, bool) {
	for _, c := range Coins {
		if c.Name == name {
			return c, true
		}
	}
	return Coin{}, false
}
