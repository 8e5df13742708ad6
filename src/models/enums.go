package models

type InvestmentBankType string

const (
	TossSecurities       InvestmentBankType = "TOSS_SECURITIES"
	KiwoomSecurities     InvestmentBankType = "KIWOOM_SECURITIES"
	MiraeAssetSecurities InvestmentBankType = "MIRAE_ASSET_SECURITIES"
	SamsungSecurities    InvestmentBankType = "SAMSUNG_SECURITIES"
	KoreaInvestment      InvestmentBankType = "KOREA_INVESTMENT"
	NHInvestment         InvestmentBankType = "NH_INVESTMENT"
	KBSecurities         InvestmentBankType = "KB_SECURITIES"
	ShinhanSecurities    InvestmentBankType = "SHINHAN_SECURITIES"
)

// InvestmentBanks lists every supported bank in display order.
var InvestmentBanks = []InvestmentBankType{
	TossSecurities,
	KiwoomSecurities,
	MiraeAssetSecurities,
	SamsungSecurities,
	KoreaInvestment,
	NHInvestment,
	KBSecurities,
	ShinhanSecurities,
}

func (b InvestmentBankType) Valid() bool {
	for _, bank := range InvestmentBanks {
		if bank == b {
			return true
		}
	}
	return false
}

type AccountType string

const (
	ISAAccount            AccountType = "ISA"
	PensionSavingsAccount AccountType = "PENSION_SAVINGS"
	IRPAccount            AccountType = "IRP"
	RegularAccount        AccountType = "REGULAR"
)

var AccountTypes = []AccountType{
	ISAAccount,
	PensionSavingsAccount,
	IRPAccount,
	RegularAccount,
}

func (a AccountType) Valid() bool {
	for _, account := range AccountTypes {
		if account == a {
			return true
		}
	}
	return false
}

type ProviderType string

const (
	GoogleProvider ProviderType = "google"
	KakaoProvider  ProviderType = "kakao"
	NaverProvider  ProviderType = "naver"
)

func (p ProviderType) Valid() bool {
	return p == GoogleProvider || p == KakaoProvider || p == NaverProvider
}
