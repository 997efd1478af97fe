package model

// SolvedStatus は「解決済み」マーカー照会の三値結果を表す。
// 解決済みプラグインが無効なフォーラムでは照会自体が成立しないため、
// 例外ではなく Available=false の値として呼び出し側に伝える。
type SolvedStatus struct {
	// Available は解決済みマーカー機構が利用可能かどうか。
	Available bool
	// Topics は解決済みトピック。Available=trueでも空のことがある。
	Topics []*Topic
}

// SolvedUnavailable は機構が利用できないことを示す結果を返す。
func SolvedUnavailable() SolvedStatus {
	return SolvedStatus{Available: false}
}

// SolvedAvailable は取得済みトピックを持つ結果を返す。
func SolvedAvailable(topics []*Topic) SolvedStatus {
	return SolvedStatus{Available: true, Topics: topics}
}
