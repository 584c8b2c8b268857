package dialog

type State string

const (
	StateIdle State = "idle"

	// Склад
	StateInvList       State = "inv_list"        // список материалов с фильтрами
	StateInvItem       State = "inv_item"        // карточка варианта (остаток + действия)
	StateInvSearch     State = "inv_search"      // ожидание строки поиска
	StateInvAddQty     State = "inv_add_qty"     // ввод количества для прихода
	StateInvSubQty     State = "inv_sub_qty"     // ввод количества для списания
	StateInvNotes      State = "inv_notes"       // необязательная заметка к операции
	StateInvImportFile State = "inv_import_file" // ожидание Excel с фактическими остатками
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
