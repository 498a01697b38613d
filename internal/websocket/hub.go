package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Hub struct {
	clients map[uuid.UUID]*Client

	// Клиенты по UserID (один пользователь может иметь несколько соединений)
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	// Клиенты в комнатах
	rooms map[RoomKey]map[uuid.UUID]*Client

	// Каналы для регистрации/отмены регистрации
	register   chan *Client
	unregister chan *Client

	// Бэкплейн ретранслирует события комнат на другие инстансы
	backplane Backplane

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		rooms:       make(map[RoomKey]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetBackplane подключает межпроцессную шину; вызывать до Run
func (h *Hub) SetBackplane(b Backplane) {
	h.backplane = b
}

// Run запускает hub
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

// Register регистрирует нового клиента.
// После Stop цикл Run канал уже не читает, поэтому не блокируемся
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	// Сразу помещаем соединение в персональную комнату: туда доставляются
	// incoming-call и прочие адресные события
	h.addToRoomUnsafe(client, PersonalRoom(client.UserID))

	log.Printf("Client registered: %s (User: %s)", client.ID, client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		// Удаляем из всех комнат
		for room := range client.Rooms {
			h.removeFromRoomUnsafe(client, room)
		}

		// Удаляем из списка клиентов пользователя
		if userClients, ok := h.userClients[client.UserID]; ok {
			delete(userClients, client.ID)
			if len(userClients) == 0 {
				delete(h.userClients, client.UserID)
			}
		}

		delete(h.clients, client.ID)
		close(client.Send)

		log.Printf("Client unregistered: %s (User: %s)", client.ID, client.UserID)
	}
}

// JoinRoom добавляет клиента в комнату; повторный вход — no-op
func (h *Hub) JoinRoom(client *Client, room RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.addToRoomUnsafe(client, room)
}

// LeaveRoom удаляет клиента из комнаты; выход из чужой комнаты — no-op
func (h *Hub) LeaveRoom(client *Client, room RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, room)
}

func (h *Hub) addToRoomUnsafe(client *Client, room RoomKey) {
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[uuid.UUID]*Client)
	}

	h.rooms[room][client.ID] = client
	client.mu.Lock()
	client.Rooms[room] = true
	client.mu.Unlock()
}

func (h *Hub) removeFromRoomUnsafe(client *Client, room RoomKey) {
	if members, ok := h.rooms[room]; ok {
		if _, ok := members[client.ID]; ok {
			delete(members, client.ID)
			client.mu.Lock()
			delete(client.Rooms, room)
			client.mu.Unlock()

			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// ClientsOf возвращает все активные соединения пользователя
func (h *Hub) ClientsOf(userID uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.userClients[userID]))
	for _, client := range h.userClients[userID] {
		clients = append(clients, client)
	}
	return clients
}

// IsOnline проверяет, есть ли у пользователя активные соединения
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.userClients[userID]) > 0
}

// SendToUser отправляет событие во все соединения пользователя
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	h.SendToRoom(PersonalRoom(userID), message)
}

// SendToRoom отправляет событие в комнату на этом и остальных инстансах
func (h *Hub) SendToRoom(room RoomKey, message []byte) {
	h.mu.RLock()
	h.deliverToRoomUnsafe(room, message, uuid.Nil)
	h.mu.RUnlock()

	h.publish(room, uuid.Nil, message)
}

// SendToRoomExcept — то же, но без соединений одного пользователя
// (обычно отправителя, включая все его устройства)
func (h *Hub) SendToRoomExcept(room RoomKey, excludeUser uuid.UUID, message []byte) {
	h.mu.RLock()
	h.deliverToRoomUnsafe(room, message, excludeUser)
	h.mu.RUnlock()

	h.publish(room, excludeUser, message)
}

// DeliverLocal раздает событие только локальным членам комнаты;
// вызывается бэкплейном для событий с других инстансов.
// Исключение пользователя приходит в конверте и действует и здесь
func (h *Hub) DeliverLocal(room RoomKey, excludeUser uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.deliverToRoomUnsafe(room, message, excludeUser)
}

func (h *Hub) deliverToRoomUnsafe(room RoomKey, message []byte, excludeUser uuid.UUID) {
	for _, client := range h.rooms[room] {
		if excludeUser != uuid.Nil && client.UserID == excludeUser {
			continue
		}
		select {
		case client.Send <- message:
		default:
			log.Printf("Client %s send channel full", client.ID)
		}
	}
}

func (h *Hub) publish(room RoomKey, excludeUser uuid.UUID, message []byte) {
	if h.backplane == nil {
		return
	}
	if err := h.backplane.Publish(h.ctx, room, excludeUser, message); err != nil {
		log.Printf("Backplane publish failed for %s: %v", room, err)
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if data, err := Encode(EventPing, nil); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// GetOnlineUsers возвращает список онлайн пользователей
func (h *Hub) GetOnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

// GetRoomUsers возвращает список пользователей в комнате
func (h *Hub) GetRoomUsers(room RoomKey) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userMap := make(map[uuid.UUID]bool)
	for _, client := range h.rooms[room] {
		userMap[client.UserID] = true
	}

	users := make([]uuid.UUID, 0, len(userMap))
	for userID := range userMap {
		users = append(users, userID)
	}
	return users
}
