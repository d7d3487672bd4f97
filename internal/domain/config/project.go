package config

// ProjectFile is the on-disk shape of salvo.toml
//
//	registry = "contracts.json"
//	network = "base-sepolia"
//	receipt_timeout = "120s"
//
//	[networks.base-sepolia]
//	chain_id = 84532
//	rpc_url = "https://sepolia.base.org"
//	explorer_url = "https://sepolia.basescan.org"
type ProjectFile struct {
	Registry       string              `toml:"registry"`
	Network        string              `toml:"network"`
	ReceiptTimeout string              `toml:"receipt_timeout"`
	Networks       map[string]*Network `toml:"networks"`
}
